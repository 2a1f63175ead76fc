package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/ceap/internal/logging"
)

func TestTrustedRealIP(t *testing.T) {
	var seen string
	handler := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.1", "not-an-ip"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = r.RemoteAddr }),
	)

	tests := []struct {
		name   string
		remote string
		header string
		value  string
		want   string
	}{
		{name: "trusted cidr real ip", remote: "10.1.2.3:5000", header: "X-Real-IP", value: "203.0.113.9", want: "203.0.113.9"},
		{name: "trusted single ip forwarded", remote: "192.168.1.1:5000", header: "X-Forwarded-For", value: "198.51.100.7, 10.1.1.1", want: "198.51.100.7"},
		{name: "untrusted source", remote: "203.0.113.50:5000", header: "X-Real-IP", value: "1.2.3.4", want: "203.0.113.50:5000"},
		{name: "garbage header", remote: "10.1.2.3:5000", header: "X-Real-IP", value: "nope", want: "10.1.2.3:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set(tt.header, tt.value)

			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "text"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/processar-ceap", nil))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=400")
	assert.Contains(t, out, "bytes=4")
	assert.Contains(t, out, "path=/processar-ceap")
}
