package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"hash"
	"io"
	"net/http"
)

// IdempotencyHeader names the header a client sets to make a POST request idempotent.
const IdempotencyHeader = "Idempotency-Key"

var _ http.ResponseWriter = replayWriter{}

// Idempotent returns a middleware.Adapter that enables features
// of idempotency on a POST endpoint.
// GET, DELETE, PUT, & PATCH are idempotent by definition, so they pass through,
// as do POST requests without a key.
//
// Idempotent pulls a key (a UUID v4 string) from request headers
// to base the uniqueness of a POST request around.
//
// If a previous request has not used that key,
// Idempotent pairs all of the following values to the key:
//   - the hash of the body of the request
//   - the body of the resulting response
//   - the status code and content type of the resulting response
//
// If that key has been used before (and has not expired),
// Idempotent falls into one of these scenarios:
//
//   - if a status code has not been set for that key,
//     Idempotent responds with 409 since the idempotent request is still processing
//
//   - if the newly requested resource (the URI) does not match the original,
//     Idempotent responds with 422
//
//   - if the new request's body does not match the body of the original request's,
//     Idempotent responds with 422
//
//   - otherwise, Idempotent writes the status code and body set for the key
//
// cache and newHash can be nil.
// Idempotent will use a ReplayMap and sha256.New, accordingly.
//
// Idempotent follows the IETF draft for the Idempotency-Key HTTP header:
// https://tools.ietf.org/id/draft-idempotency-header-01.html
func Idempotent(cache ReplayCacher, newHash func() hash.Hash) Adapter {
	if cache == nil {
		cache = NewReplayMap()
	}

	if newHash == nil {
		newHash = sha256.New
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if r.Method != http.MethodPost || key == "" {
				handler.ServeHTTP(w, r)
				return
			}

			hasher := newHash()
			teeBody := bytes.NewBuffer(nil)
			if _, err := io.Copy(hasher, io.TeeReader(r.Body, teeBody)); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			r.Body = io.NopCloser(teeBody)
			sum := hasher.Sum(nil)

			rp, claimed := cache.Claim(r.Context(), key, NewReplay(r.URL.RequestURI(), sum))
			if !claimed {
				switch {
				case rp.Status == 0:
					w.WriteHeader(http.StatusConflict)
				case rp.URI != r.URL.RequestURI() || !bytes.Equal(rp.Req, sum):
					w.WriteHeader(http.StatusUnprocessableEntity)
				default:
					if rp.ContentType != "" {
						w.Header().Set("Content-Type", rp.ContentType)
					}
					w.WriteHeader(rp.Status)
					w.Write(rp.Body.Bytes())
				}
				return
			}

			rw := replayWriter{
				ctx: r.Context(),
				c:   cache,
				rp:  &rp,
				k:   key,
				w:   w,
			}
			handler.ServeHTTP(rw, r)
		})
	}
}

// A Replay is data from an HTTP response
// that can be reused when another request
// matches the same idempotency key.
type Replay struct {
	Body        *bytes.Buffer
	ContentType string
	Req         []byte
	Status      int
	URI         string
}

// A replayGob is an intermediate representation of
// a Replay for the purposes of gob encoding/decoding.
//
// replayGob is necessary as long as pkg gob cannot decode/encode
// fields in a Replay (e.g., Body).
type replayGob struct {
	B []byte
	C string
	R []byte
	S int
	U string
}

// NewReplay constructs a new Replay for a request to uri with a body hashing to hashedBody.
func NewReplay(uri string, hashedBody []byte) Replay {
	return Replay{Body: bytes.NewBuffer(nil), URI: uri, Req: hashedBody}
}

// GobDecode unmarshals the gob-encoded []byte into fields of the *Replay.
//
// GobDecode implements gob.GobDecoder.
func (rp *Replay) GobDecode(b []byte) error {
	g := new(replayGob)
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(g); err != nil {
		return err
	}

	rp.Body = bytes.NewBuffer(g.B)
	rp.ContentType, rp.Req, rp.Status, rp.URI = g.C, g.R, g.S, g.U
	return nil
}

// GobEncode marshals the fields of the Replay into a gob-encoded []byte.
//
// GobEncode implements gob.GobEncoder.
func (rp Replay) GobEncode() ([]byte, error) {
	var body []byte
	if rp.Body != nil {
		body = rp.Body.Bytes()
	}

	buf := bytes.NewBuffer(nil)
	g := replayGob{body, rp.ContentType, rp.Req, rp.Status, rp.URI}
	if err := gob.NewEncoder(buf).Encode(g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// clone copies rp so the copy's Body can be read without draining rp's.
func (rp Replay) clone() Replay {
	c := rp
	c.Body = bytes.NewBuffer(nil)
	if rp.Body != nil {
		c.Body.Write(rp.Body.Bytes())
	}

	return c
}

// A replayWriter pairs a Replay with an http.ResponseWriter
// so both can be written to by an HTTP handler.
// Changes to the Replay in such a way are saved in the cache.
//
// A replayWriter implements http.ResponseWriter.
type replayWriter struct {
	ctx context.Context
	c   ReplayCacher
	rp  *Replay
	k   string
	w   http.ResponseWriter
}

// Header returns the http.Header of the underlying http.ResponseWriter.
func (rw replayWriter) Header() http.Header { return rw.w.Header() }

// Write writes the bytes to all consumers the replayWriter is concerned with.
func (rw replayWriter) Write(b []byte) (int, error) {
	select {
	case <-rw.ctx.Done():
		return 0, rw.ctx.Err()
	default:
		if rw.rp.Status == 0 {
			rw.WriteHeader(http.StatusOK)
		}

		n, err := rw.w.Write(b)
		if err != nil {
			return n, err
		}

		rw.rp.Body.Write(b)
		rw.c.Set(rw.ctx, rw.k, *rw.rp)
		return n, nil
	}
}

// WriteHeader copies the status code about to be written to the Replay for later reuse
// before actually writing the status code.
func (rw replayWriter) WriteHeader(s int) {
	select {
	case <-rw.ctx.Done():
		return
	default:
		rw.w.WriteHeader(s)
		rw.rp.ContentType = rw.w.Header().Get("Content-Type")
		rw.rp.Status = s
		rw.c.Set(rw.ctx, rw.k, *rw.rp)
	}
}
