package tunnel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogTail_DeduplicatesAcrossPolls(t *testing.T) {
	responses := []string{
		`{"requests":[
			{"id":"a","request":{"method":"POST","uri":"/billing/webhook"},
			 "response":{"status_code":200,"headers":{"Date":["Mon, 02 Jan 2006 15:04:05 GMT"]}}}
		]}`,
		`{"requests":[
			{"id":"b","request":{"method":"POST","uri":"/billing/webhook"},
			 "response":{"status_code":500,"headers":{"Date":["Mon, 02 Jan 2006 16:00:00 GMT"]}}},
			{"id":"a","request":{"method":"POST","uri":"/billing/webhook"},
			 "response":{"status_code":200,"headers":{"Date":["Mon, 02 Jan 2006 15:04:05 GMT"]}}}
		]}`,
	}

	var call int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, responses[call])
		if call < len(responses)-1 {
			call++
		}
	}))
	defer srv.Close()

	var buf strings.Builder
	tail := NewLogTail(NewAgentClient(srv.URL), &buf)

	require.NoError(t, tail.Poll(context.Background()))
	require.NoError(t, tail.Poll(context.Background()))
	require.NoError(t, tail.Poll(context.Background()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2, "each request id is printed exactly once")

	require.True(t, strings.HasPrefix(lines[0], "200 POST /billing/webhook"))
	require.True(t, strings.HasSuffix(lines[0], "15:04:05"))
	require.True(t, strings.HasPrefix(lines[1], "500 POST /billing/webhook"))
	require.True(t, strings.HasSuffix(lines[1], "16:00:00"))
}

func TestLogTail_TruncatesLongURIs(t *testing.T) {
	longURI := "/billing/webhook/" + strings.Repeat("x", 100)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"requests":[
			{"id":"a","request":{"method":"GET","uri":"%s"},
			 "response":{"status_code":200,"headers":{"Date":["Mon, 02 Jan 2006 15:04:05 GMT"]}}}
		]}`, longURI)
	}))
	defer srv.Close()

	var buf strings.Builder
	tail := NewLogTail(NewAgentClient(srv.URL), &buf)
	require.NoError(t, tail.Poll(context.Background()))

	line := strings.TrimRight(buf.String(), "\n")
	fields := strings.Fields(line)
	require.Equal(t, "200", fields[0])
	require.Equal(t, "GET", fields[1])
	require.Len(t, fields[2], logURIWidth)
}
