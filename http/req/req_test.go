package req_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
	"github.com/xy-planning-network/trailhead/http/req"
)

type testEnum string

func (t testEnum) String() string { return string(t) }
func (t testEnum) Valid() error {
	if t == "member" {
		return nil
	}
	return errors.New("oops")
}

type signUp struct {
	Name     string     `json:"name" schema:"name" validate:"required"`
	Email    string     `json:"email" schema:"email" validate:"required,email"`
	Password string     `json:"password" schema:"password" validate:"required,min=8"`
	Role     testEnum   `json:"role" schema:"role" validate:"enum"`
	Roles    []testEnum `json:"roles" schema:"roles" validate:"enum"`
	Ignored  string     `json:"-" schema:"-"`
}

func TestParserParseBody(t *testing.T) {
	// Arrange
	parser := req.NewParser()

	var actual req.ValidationErrors
	var input, output signUp

	b := new(bytes.Buffer)
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err := parser.ParseBody(b, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadAny)

	// Arrange
	b.Reset()
	b.WriteByte('\x00')

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadFormat)

	// Arrange
	expected := req.ValidationErrors{
		{Field: "name", Got: "", Rule: "required; string"},
		{Field: "email", Got: "", Rule: "required; string"},
		{Field: "password", Got: "", Rule: "required; string"},
		{Field: "role", Got: testEnum(""), Rule: "enum; req_test.testEnum"},
		{Field: "roles", Got: []testEnum(nil), Rule: "enum; []req_test.testEnum"},
	}

	b.Reset()
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.Equal(t, input, output)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	input = signUp{
		Name:     "Simone de Beauvoir",
		Email:    "not-an-email",
		Password: "short",
		Role:     "member",
		Roles:    []testEnum{"member", "admin"},
	}

	expected = req.ValidationErrors{
		{Field: "email", Got: "not-an-email", Rule: "email; string"},
		{Field: "password", Got: "short", Rule: "min=8; string"},
		{Field: "roles", Got: []testEnum{"member", "admin"}, Rule: "enum; []req_test.testEnum"},
	}

	b.Reset()
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	input.Email = "simone@example.com"
	input.Password = "the-second-sex"
	input.Roles = []testEnum{"member"}
	input.Ignored = "ignore"

	output = signUp{}
	b.Reset()
	require.Nil(t, json.NewEncoder(b).Encode(input))

	// Act
	err = parser.ParseBody(b, &output)

	// Assert
	require.Nil(t, err)
	require.Equal(t, input.Name, output.Name)
	require.Equal(t, input.Email, output.Email)
	require.Equal(t, input.Password, output.Password)
	require.Equal(t, input.Role, output.Role)
	require.Equal(t, input.Roles, output.Roles)
	require.Equal(t, "", output.Ignored)
}

func TestParserParseForm(t *testing.T) {
	// Arrange
	parser := req.NewParser()
	u := make(url.Values)

	// Act
	err := parser.ParseForm(u, struct{}{})

	// Assert
	require.ErrorIs(t, err, trailhead.ErrBadAny)

	// Act
	err = parser.ParseForm(u, new(struct {
		A string `schema:"a,required"`
	}))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotImplemented)

	// Arrange
	u.Set("a", "test")

	// Act
	err = parser.ParseForm(u, new(struct {
		A struct{} `schema:"a"`
	}))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotImplemented)

	// Arrange
	type counter struct {
		A string   `schema:"a" validate:"required"`
		B int64    `schema:"b" validate:"gt=10,required"`
		C []string `schema:"c" validate:"len=2,required"`
		D string   `schema:"-"`
	}

	u.Set("b", "test")

	var actual req.ValidationErrors
	expected := req.ValidationErrors{{
		Field: "b",
		Got:   "bad value at index 0",
		Rule:  "must be int64",
	}}

	// Act
	err = parser.ParseForm(u, new(counter))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	u.Set("b", "1")
	u.Add("c", "1")

	expected = req.ValidationErrors{
		{Field: "b", Got: int64(1), Rule: "gt=10; int64"},
		{Field: "c", Got: []string{"1"}, Rule: "len=2; []string"},
	}

	// Act
	err = parser.ParseForm(u, new(counter))

	// Assert
	require.ErrorIs(t, err, trailhead.ErrNotValid)
	require.ErrorAs(t, err, &actual)
	require.Equal(t, expected, actual)

	// Arrange
	u.Set("b", "20")
	u.Add("c", "2")
	u.Set("d", "ignore")
	actualVal := new(counter)

	// Act
	err = parser.ParseForm(u, actualVal)

	// Assert
	require.Nil(t, err)
	require.Equal(t, "test", actualVal.A)
	require.Equal(t, int64(20), actualVal.B)
	require.Equal(t, []string{"1", "2"}, actualVal.C)
	require.Equal(t, "", actualVal.D)
}

func TestParserParse(t *testing.T) {
	tcs := []struct {
		name        string
		contentType string
		body        string
		err         error
	}{
		{
			"JSON",
			"application/json; charset=utf-8",
			`{"name":"Frantz Fanon","email":"fanon@example.com","password":"wretched-earth","role":"member","roles":["member"]}`,
			nil,
		},
		{
			"Form",
			"application/x-www-form-urlencoded",
			url.Values{
				"name":     {"Frantz Fanon"},
				"email":    {"fanon@example.com"},
				"password": {"wretched-earth"},
				"role":     {"member"},
				"roles":    {"member"},
			}.Encode(),
			nil,
		},
		{"Bad-JSON", "application/json", `{"name":`, trailhead.ErrBadFormat},
		{"Invalid-Form", "application/x-www-form-urlencoded", "name=Frantz+Fanon&role=member", trailhead.ErrNotValid},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			parser := req.NewParser()
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", tc.contentType)

			actual := new(signUp)

			// Act
			err := parser.Parse(w, r, actual)

			// Assert
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.Nil(t, err)
			require.Equal(t, "Frantz Fanon", actual.Name)
			require.Equal(t, "fanon@example.com", actual.Email)
			require.Equal(t, testEnum("member"), actual.Role)
		})
	}
}
