package netx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadToPresignedURL(t *testing.T) {
	file := []byte("attachment body")

	t.Run("success", func(t *testing.T) {
		var gotMethod, gotCT string
		var gotBody []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(ts.URL+"/key?X-Amz-Signature=abc", file)
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "application/octet-stream", gotCT)
		assert.Equal(t, file, gotBody)
	})

	t.Run("rejected upload", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer ts.Close()

		err := UploadToPresignedURL(ts.URL, file)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "upload failed: 403"))
	})
}

func TestDownloadFromPresignedURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("object contents"))
		}))
		defer ts.Close()

		got, err := DownloadFromPresignedURL(ts.URL + "/key")
		require.NoError(t, err)
		assert.Equal(t, []byte("object contents"), got)
	})

	t.Run("missing object", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		_, err := DownloadFromPresignedURL(ts.URL + "/key")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "download failed: 404"))
	})
}
