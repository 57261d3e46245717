package web_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	// Arrange
	a := newApp(t, nil)

	steps := []struct {
		name     string
		method   string
		path     string
		expected float64
	}{
		{"Starts-At-Zero", http.MethodGet, "/api/counter", 0},
		{"Increase", http.MethodPost, "/api/counter/increase", 1},
		{"Increase-Again", http.MethodPost, "/api/counter/increase", 2},
		{"Read", http.MethodGet, "/api/counter", 2},
		{"Reset", http.MethodPost, "/api/counter/reset", 0},
		{"Read-After-Reset", http.MethodGet, "/api/counter", 0},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			// Act
			res := a.do(t, step.method, step.path, "", "")

			// Assert
			require.Equal(t, http.StatusOK, res.StatusCode)
			require.Equal(t, map[string]any{"counter": step.expected}, decode(t, res)["data"])
		})
	}
}
