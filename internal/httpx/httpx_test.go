package httpx_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carta-backend/internal/apperr"
	"carta-backend/internal/httpx"
)

type signup struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Price    float64 `json:"price" validate:"gte=0"`
}

func newApp(h fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(zap.NewNop())})
	app.Post("/", h)
	return app
}

func do(t *testing.T, app *fiber.App, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out.Message
}

func TestBindReportsJSONFieldNames(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error {
		var in signup
		if err := httpx.Bind(c, &in); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "ok"})
	})

	status, msg := do(t, app, `{"email":"nope","password":"secret1"}`)
	require.Equal(t, 400, status)
	require.Equal(t, "email must be a valid email", msg)

	status, msg = do(t, app, `{"email":"a@x.com","password":"x"}`)
	require.Equal(t, 400, status)
	require.Equal(t, "password must be at least 6 characters", msg)

	status, msg = do(t, app, `{"email":"a@x.com","password":"secret1","price":-1}`)
	require.Equal(t, 400, status)
	require.Equal(t, "price must be greater than or equal to 0", msg)

	status, _ = do(t, app, `{not json`)
	require.Equal(t, 400, status)

	status, msg = do(t, app, `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, 200, status)
	require.Equal(t, "ok", msg)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Conflict("email already registered"), 409, "email already registered"},
		{apperr.NotFound("restaurant not found"), 404, "restaurant not found"},
		{apperr.Unauthorized("invalid credentials"), 401, "invalid credentials"},
		{apperr.Internal("database error", errors.New("pq: secret detail")), 500, "internal server error"},
		{fiber.NewError(fiber.StatusForbidden, "forbidden"), 403, "forbidden"},
		{errors.New("boom"), 500, "internal server error"},
	}
	for _, tc := range cases {
		app := newApp(func(c *fiber.Ctx) error { return tc.err })
		status, msg := do(t, app, `{}`)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.msg, msg)
	}
}
