package domain

import (
	"errors"
	"sync"
)

// RequestScope owns every content-bearing buffer for one analysis request:
// the uploaded payload, the extracted text and the raw model output. It is
// the unit the zero-retention guarantee is enforced on. Dispose zeroes all
// buffers in place and must run on every exit path; no content field may
// outlive the HTTP response.
//
// Derived strings built from these buffers are request-local and die with
// the request; the scope guarantees the canonical copies are wiped.
type RequestScope struct {
	mu       sync.Mutex
	disposed bool

	payload  []byte
	text     []byte
	rawModel []byte
}

func NewRequestScope(payload []byte) *RequestScope {
	return &RequestScope{payload: payload}
}

func (s *RequestScope) Payload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload
}

func (s *RequestScope) SetText(text []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.text = text
}

func (s *RequestScope) Text() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *RequestScope) SetRawModelOutput(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.rawModel = raw
}

// Dispose zeroes all content buffers and drops the references. Idempotent.
// A non-nil error means the zero-retention guarantee could not be verified
// and the response must be withheld.
func (s *RequestScope) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}

	for _, buf := range [][]byte{s.payload, s.text, s.rawModel} {
		for i := range buf {
			buf[i] = 0
		}
	}
	if !zeroed(s.payload) || !zeroed(s.text) || !zeroed(s.rawModel) {
		return errors.New("content buffer survived wipe")
	}

	s.payload = nil
	s.text = nil
	s.rawModel = nil
	s.disposed = true
	return nil
}

func (s *RequestScope) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func zeroed(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
