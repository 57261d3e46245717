package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/trailhead"
)

// maxBodyBytes caps how much of a request body Parse reads.
const maxBodyBytes = 1 << 20

// A Parser decodes and validates request payloads.
// A Parser is safe for concurrent use.
type Parser struct {
	formDecoder *schema.Decoder
	validator
}

// NewParser constructs a *Parser.
func NewParser() *Parser {
	return &Parser{
		formDecoder: newFormDecoder(),
		validator:   newValidator(),
	}
}

// Parse decodes the payload of r into structPtr according to r's Content-Type:
// JSON for "application/json", form values otherwise.
// Parse reads at most 1MB of the body.
func (p *Parser) Parse(w http.ResponseWriter, r *http.Request, structPtr any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		return p.ParseBody(r.Body, structPtr)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("trailhead/http/req: %w: failed parsing form: %s", trailhead.ErrBadFormat, err)
	}

	return p.ParseForm(r.PostForm, structPtr)
}

// ParseBody decodes into a pointer to a struct the JSON data in body.
// If successful, ParseBody runs validation against the contents,
// returning an ErrNotValid if the data fails validation rules.
//
// ParseBody reads the entire body and it can't be read from again.
// Use a [io.TeeReader] if body needs to be reused after calling ParseBody.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	var ourFault *json.InvalidUnmarshalError
	err := json.NewDecoder(body).Decode(structPtr)
	if errors.As(err, &ourFault) {
		return fmt.Errorf("trailhead/http/req: %w: ParseBody called with non-pointer: %s", trailhead.ErrBadAny, err)
	}

	if err != nil {
		return fmt.Errorf("trailhead/http/req: %w: failed decoding request body: %s", trailhead.ErrBadFormat, err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("trailhead/http/req: %T failed validation: %w", structPtr, err)
	}

	return nil
}

// ParseForm decodes into a pointer to a struct the form data in vals,
// matching keys to "schema" struct tags.
// If successful, ParseForm runs validation against the contents,
// returning an ErrNotValid if the data fails validation rules.
//
// ParseForm works just as well for query params.
func (p *Parser) ParseForm(vals url.Values, structPtr any) error {
	if err := p.formDecoder.Decode(structPtr, vals); err != nil {
		return fmt.Errorf("trailhead/http/req: failed decoding form values: %w", translateDecoderError(err))
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("trailhead/http/req: %T failed validation: %w", structPtr, err)
	}

	return nil
}
