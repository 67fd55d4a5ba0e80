package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	media, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	cfg := &config.Config{
		Environment: config.Test,
		ServerHost:  "127.0.0.1",
		ServerPort:  "0",
		CORSOrigins: []string{"*"},
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		MediaURL:    "/media",
	}
	srv := server.New(cfg, store.New(db), nil, media)
	return &testServer{t: t, db: db, handler: srv.Handler()}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Host = "foodgram.test"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(user *models.User) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/token/login/", "", types.LoginRequest{
		Email:    user.Email,
		Password: testhelpers.TestPassword,
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp types.TokenResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AuthToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = s.do(http.MethodGet, "/api/nothing-here/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":["404 page not found"]}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/not-a-uuid/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":["Not found."]}`, w.Body.String())
}

func TestAccountFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/users/", "", types.RegisterRequest{
		Email:     "vivian@example.com",
		Username:  "vivian",
		FirstName: "Vivian",
		LastName:  "Moss",
		Password:  "correct-horse-9",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	registered := decode[types.RegisteredUserResponse](t, w)
	assert.Equal(t, "vivian", registered.Username)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/api/users/", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[map[string][]string](t, w)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "username")

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", types.LoginRequest{Email: "vivian@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "non_field_errors")

	w = s.do(http.MethodPost, "/api/auth/token/login/", "", types.LoginRequest{Email: "vivian@example.com", Password: "correct-horse-9"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[types.TokenResponse](t, w).AuthToken

	w = s.do(http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[types.UserResponse](t, w)
	assert.Equal(t, registered.ID, me.ID)
	assert.Nil(t, me.Avatar)

	w = s.do(http.MethodGet, "/api/users/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPut, "/api/users/me/avatar/", token, types.SetAvatarRequest{Avatar: testhelpers.PNGDataURI})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(decode[types.AvatarResponse](t, w).Avatar, "/media/avatars/"))

	w = s.do(http.MethodDelete, "/api/users/me/avatar/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/users/set_password/", token, types.SetPasswordRequest{
		NewPassword:     "battery-staple-7",
		CurrentPassword: "correct-horse-9",
	})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOverlongPasswordIsRejected(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("a", 100)

	w := s.do(http.MethodPost, "/api/users/", "", types.RegisterRequest{
		Email:     "long@example.com",
		Username:  "long",
		FirstName: "Long",
		LastName:  "Password",
		Password:  long,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "password")

	user := testhelpers.CreateUser(t, s.db, "short")
	w = s.do(http.MethodPost, "/api/users/set_password/", s.login(user), types.SetPasswordRequest{
		NewPassword:     long,
		CurrentPassword: testhelpers.TestPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w), "new_password")
}

func TestUserPagination(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"ann", "bob", "cid"} {
		testhelpers.CreateUser(t, s.db, name)
	}

	w := s.do(http.MethodGet, "/api/users/?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.UserResponse]](t, w)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Equal(t, "http://foodgram.test/api/users?limit=2&page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = s.do(http.MethodGet, "/api/users/?limit=2&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.UserResponse]](t, w)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)

	w = s.do(http.MethodGet, "/api/users/?limit=2&page=3", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/users/?page=abc", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/users/?page=9223372036854775807", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptions(t *testing.T) {
	s := newTestServer(t)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	egg := testhelpers.CreateIngredient(t, s.db, "egg", "pcs")
	testhelpers.CreateRecipe(t, s.db, author, "Omelette", testhelpers.Amounts{egg.ID: 2})
	testhelpers.CreateRecipe(t, s.db, author, "Boiled egg", testhelpers.Amounts{egg.ID: 1})
	token := s.login(reader)

	w := s.do(http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe/?recipes_limit=1", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[types.SubscriptionResponse](t, w)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 1)
	assert.Equal(t, int64(2), sub.RecipesCount)

	w = s.do(http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/users/"+reader.ID.String()+"/subscribe/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/subscriptions/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	subs := decode[types.Page[types.SubscriptionResponse]](t, w)
	require.Len(t, subs.Results, 1)
	assert.Equal(t, author.ID, subs.Results[0].ID)
	assert.Len(t, subs.Results[0].Recipes, 2)

	w = s.do(http.MethodGet, "/api/users/subscriptions/?recipes_limit=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	subs = decode[types.Page[types.SubscriptionResponse]](t, w)
	require.Len(t, subs.Results, 1)
	assert.Empty(t, subs.Results[0].Recipes)
	assert.Equal(t, int64(2), subs.Results[0].RecipesCount)

	w = s.do(http.MethodGet, "/api/users/"+author.ID.String()+"/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)

	w = s.do(http.MethodDelete, "/api/users/"+author.ID.String()+"/subscribe/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/users/"+author.ID.String()+"/subscribe/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngredients(t *testing.T) {
	s := newTestServer(t)
	salt := testhelpers.CreateIngredient(t, s.db, "salt", "g")
	testhelpers.CreateIngredient(t, s.db, "sugar", "g")
	testhelpers.CreateIngredient(t, s.db, "milk", "ml")

	w := s.do(http.MethodGet, "/api/ingredients/?name=s", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[[]types.IngredientResponse](t, w)
	assert.Len(t, items, 2)

	w = s.do(http.MethodGet, "/api/ingredients/"+salt.ID.String()+"/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "salt", decode[types.IngredientResponse](t, w).Name)
}

func TestRecipeLifecycle(t *testing.T) {
	s := newTestServer(t)
	author := testhelpers.CreateUser(t, s.db, "chef")
	other := testhelpers.CreateUser(t, s.db, "guest")
	flour := testhelpers.CreateIngredient(t, s.db, "flour", "g")
	milk := testhelpers.CreateIngredient(t, s.db, "milk", "ml")
	token := s.login(author)
	otherToken := s.login(other)

	create := types.CreateRecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: milk.ID, Amount: 250}, {ID: flour.ID, Amount: 200}},
		Image:       testhelpers.PNGDataURI,
		Name:        "Pancakes",
		Text:        "Whisk and fry.",
		CookingTime: 20,
	}
	w := s.do(http.MethodPost, "/api/recipes/", "", create)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/recipes/", token, create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[types.RecipeResponse](t, w)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "flour", recipe.Ingredients[0].Name)
	assert.Equal(t, author.ID, recipe.Author.ID)
	path := "/api/recipes/" + recipe.ID.String() + "/"

	w = s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.RecipeResponse](t, w).IsFavorited)

	name := "Thin pancakes"
	update := types.UpdateRecipeRequest{
		Ingredients: []types.IngredientAmount{{ID: flour.ID, Amount: 150}},
		Name:        &name,
	}
	w = s.do(http.MethodPatch, path, otherToken, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, path, token, update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[types.RecipeResponse](t, w)
	assert.Equal(t, "Thin pancakes", updated.Name)
	assert.Equal(t, "Whisk and fry.", updated.Text)
	assert.Len(t, updated.Ingredients, 1)

	w = s.do(http.MethodGet, "/api/recipes/?author="+author.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[types.Page[types.RecipeResponse]](t, w).Count)

	w = s.do(http.MethodGet, "/api/recipes/?author=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, path, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoritesAndShoppingCart(t *testing.T) {
	s := newTestServer(t)
	author := testhelpers.CreateUser(t, s.db, "author")
	shopper := testhelpers.CreateUser(t, s.db, "shopper")
	egg := testhelpers.CreateIngredient(t, s.db, "egg", "pcs")
	flour := testhelpers.CreateIngredient(t, s.db, "flour", "g")
	omelette := testhelpers.CreateRecipe(t, s.db, author, "Omelette", testhelpers.Amounts{egg.ID: 3})
	cake := testhelpers.CreateRecipe(t, s.db, author, "Cake", testhelpers.Amounts{egg.ID: 1, flour.ID: 300})
	token := s.login(shopper)

	w := s.do(http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/recipes/"+omelette.ID.String()+"/favorite/", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Omelette", decode[types.RecipeMinifiedResponse](t, w).Name)

	w = s.do(http.MethodPost, "/api/recipes/"+omelette.ID.String()+"/favorite/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/recipes/?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favorites := decode[types.Page[types.RecipeResponse]](t, w)
	require.Len(t, favorites.Results, 1)
	assert.True(t, favorites.Results[0].IsFavorited)

	w = s.do(http.MethodGet, "/api/recipes/?is_favorited=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[types.Page[types.RecipeResponse]](t, w).Count)

	w = s.do(http.MethodDelete, "/api/recipes/"+omelette.ID.String()+"/favorite/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, "/api/recipes/"+omelette.ID.String()+"/favorite/", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	for _, id := range []string{omelette.ID.String(), cake.ID.String()} {
		w = s.do(http.MethodPost, "/api/recipes/"+id+"/shopping_cart/", token, nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = s.do(http.MethodGet, "/api/recipes/download_shopping_cart/", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=shopping_list.txt", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	body := w.Body.String()
	assert.Contains(t, body, "egg - 4 pcs\n")
	assert.Contains(t, body, "flour - 300 g\n")

	w = s.do(http.MethodDelete, "/api/recipes/"+cake.ID.String()+"/shopping_cart/", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestShortLinks(t *testing.T) {
	s := newTestServer(t)
	author := testhelpers.CreateUser(t, s.db, "author")
	egg := testhelpers.CreateIngredient(t, s.db, "egg", "pcs")
	recipe := testhelpers.CreateRecipe(t, s.db, author, "Omelette", testhelpers.Amounts{egg.ID: 2})

	w := s.do(http.MethodGet, "/api/recipes/"+recipe.ID.String()+"/get-link/", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	link := decode[types.ShortLinkResponse](t, w).ShortLink
	require.True(t, strings.HasPrefix(link, "http://foodgram.test/s/"), link)

	w = s.do(http.MethodGet, "/api/recipes/"+recipe.ID.String()+"/get-link/", "", nil)
	assert.Equal(t, link, decode[types.ShortLinkResponse](t, w).ShortLink)

	w = s.do(http.MethodGet, strings.TrimPrefix(link, "http://foodgram.test"), "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://foodgram.test/recipes/"+recipe.ID.String()+"/", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/s/unknown/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
