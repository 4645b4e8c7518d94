package engine

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/getmockd/mockrest/pkg/requestlog"
)

// adminPathPrefix marks requests the journal does not record.
const adminPathPrefix = "/__admin/"

// RequestJournal records every request outside /__admin/ in journal. The
// body is captured while the handler reads it, so body limits still apply.
func RequestJournal(journal requestlog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if journal == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			var body *capturedBody
			if r.Body != nil && r.Body != http.NoBody {
				body = &capturedBody{ReadCloser: r.Body}
				r.Body = body
			}
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			entry := &requestlog.Entry{
				Timestamp:      start,
				RequestID:      w.Header().Get(HeaderRequestID),
				Method:         r.Method,
				Path:           r.URL.Path,
				Route:          routePattern(r),
				QueryString:    r.URL.RawQuery,
				Headers:        r.Header.Clone(),
				RemoteAddr:     r.RemoteAddr,
				ResponseStatus: rec.statusCode,
				DurationMs:     int(time.Since(start).Milliseconds()),
			}
			if body != nil {
				entry.Body = requestlog.TruncateBody(body.buf.String(), requestlog.MaxBodySize)
				entry.BodySize = body.n
			}
			journal.Log(entry)
		})
	}
}

// capturedBody keeps the first MaxBodySize+1 bytes read through it.
type capturedBody struct {
	io.ReadCloser
	buf bytes.Buffer
	n   int
}

func (b *capturedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += n
	if room := requestlog.MaxBodySize + 1 - b.buf.Len(); room > 0 {
		b.buf.Write(p[:min(n, room)])
	}
	return n, err
}
