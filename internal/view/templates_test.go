package view

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amexing/amexing-ops/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/login.html", TemplateData{Title: "Iniciar sesión", CSRFToken: "tok"})
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "<form")
	assert.Contains(t, rec.Body.String(), `value="tok"`)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderHomeShowsActor(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	actor := shared.Actor{ID: 3, Name: "Laura Ruiz", Role: shared.RoleAdmin}
	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/home.html", TemplateData{Title: "Inicio", Actor: &actor}))
	assert.Contains(t, rec.Body.String(), "Laura Ruiz")
}

func TestExecuteUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	var buf bytes.Buffer
	assert.Error(t, engine.Execute(&buf, "pages/missing.html", nil))
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "5 de marzo de 2026", LongDate(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, LongDate(time.Time{}))
}

func TestMoney(t *testing.T) {
	out := Money(decimal.RequireFromString("1234.5"))
	assert.Regexp(t, `^\$1[,.\s\x{a0}]?234[.,]50$`, out)
}
