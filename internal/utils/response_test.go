package utils

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (int, APIResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload APIResponse
	require.NoError(t, json.Unmarshal(body, &payload))
	return resp.StatusCode, payload
}

func TestSendSuccess(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "created thing", fiber.Map{"id": 1})
	})

	require.Equal(t, fiber.StatusOK, status)
	require.True(t, payload.Success)
	require.Equal(t, "created thing", payload.Message)
	require.NotNil(t, payload.Data)
}

func TestSendSuccessDefaultsMessage(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "", nil)
	})

	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "success", payload.Message)
}

func TestSendSuccessWithStatus(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccessWithStatus(c, fiber.StatusCreated, "created", nil)
	})

	require.Equal(t, fiber.StatusCreated, status)
	require.True(t, payload.Success)
}

func TestSendError(t *testing.T) {
	status, payload := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusNotFound, "missing")
	})

	require.Equal(t, fiber.StatusNotFound, status)
	require.False(t, payload.Success)
	require.Equal(t, "missing", payload.Message)
	require.Nil(t, payload.Data)
}
