package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/cybershield-id/registration-relay/pkg/dispatch"
	"github.com/cybershield-id/registration-relay/pkg/submission"
	"github.com/cybershield-id/registration-relay/pkg/types"
	"github.com/cybershield-id/registration-relay/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// remoteForm stands in for the remote form endpoint and records each body.
type remoteForm struct {
	mu     sync.Mutex
	bodies []map[string]string
	server *httptest.Server
}

func newRemoteForm(t *testing.T) *remoteForm {
	t.Helper()
	rf := &remoteForm{}
	rf.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var fields map[string]string
		_ = json.Unmarshal(body, &fields)
		rf.mu.Lock()
		rf.bodies = append(rf.bodies, fields)
		rf.mu.Unlock()
	}))
	t.Cleanup(rf.server.Close)
	return rf
}

func (rf *remoteForm) received() []map[string]string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return append([]map[string]string(nil), rf.bodies...)
}

func newTestRouter(t *testing.T, rf *remoteForm) (*gin.Engine, *submission.Store) {
	t.Helper()
	d := dispatch.NewHTTPDispatcher(types.DispatchConfig{EndpointURL: rf.server.URL})
	store := submission.NewStore(types.SessionConfig{TTL: 5}, validation.NewValidator(), d)

	router := gin.New()
	h := NewHTTPHandler(store, nil)
	h.AddRegistrationAPI(router.Group(""))
	h.AddSessionAPI(router.Group(""))
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type upload struct {
	name      string
	mediaType string
	data      []byte
}

func doMultipart(t *testing.T, router *gin.Engine, method, path string, fields map[string]string, file *upload) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mpw.WriteField(k, v))
	}
	if file != nil {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="paymentProof"; filename="%s"`, file.name))
		header.Set("Content-Type", file.mediaType)
		part, err := mpw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

var anaPutri = map[string]string{
	"name":       "Ana Putri",
	"email":      "ana@mail.com",
	"phone":      "081234567890",
	"education":  "s1",
	"experience": "1-3",
	"package":    "full",
	"motivation": "Saya ingin belajar keamanan siber untuk karir baru",
}

var budi = map[string]string{
	"name":       "Budi Santoso",
	"email":      "budi@mail.com",
	"phone":      "081298765432",
	"education":  "d3",
	"experience": "none",
}

func TestRegister_PackageVariantRelaysOnce(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	w := doJSON(t, router, http.MethodPost, "/registration/package", anaPutri)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, "succeeded", resp["state"].(map[string]any)["kind"])
	assert.Equal(t, true, resp["opaque"])

	bodies := rf.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, anaPutri, bodies[0])
}

func TestRegister_InvalidFieldsNotRelayed(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	bad := map[string]string{"name": "A", "email": "not-an-email"}
	w := doJSON(t, router, http.MethodPost, "/registration/package", bad)
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := decode(t, w)["fields"].(map[string]any)
	assert.Len(t, fields, 7)
	assert.Equal(t, "Email tidak valid", fields["email"])
	assert.Empty(t, rf.received())
}

func TestRegister_UnknownVariant(t *testing.T) {
	router, _ := newTestRouter(t, newRemoteForm(t))
	w := doJSON(t, router, http.MethodPost, "/registration/gold", anaPutri)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_PaymentProofVariant(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	w := doMultipart(t, router, http.MethodPost, "/registration/payment-proof", budi,
		&upload{name: "bukti.png", mediaType: "image/png", data: []byte("png-bytes")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	bodies := rf.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, "bukti.png", bodies[0]["paymentProofName"])
	assert.Equal(t, "image/png", bodies[0]["paymentProofType"])
	assert.Equal(t, "cG5nLWJ5dGVz", bodies[0]["paymentProofBase64"])
	_, hasPackage := bodies[0]["package"]
	assert.False(t, hasPackage)
}

func TestRegister_PaymentProofMissing(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	w := doMultipart(t, router, http.MethodPost, "/registration/payment-proof", budi, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, string(submission.KindMissingArtifact), resp["kind"])
	assert.Empty(t, rf.received())
}

func TestRegister_PaymentProofWrongType(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	w := doMultipart(t, router, http.MethodPost, "/registration/payment-proof", budi,
		&upload{name: "anim.gif", mediaType: "image/gif", data: []byte("gif")})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "type", decode(t, w)["constraint"])
	assert.Empty(t, rf.received())
}

func TestRegister_RemoteDownReportsRetry(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)
	rf.server.Close()

	w := doJSON(t, router, http.MethodPost, "/registration/package", anaPutri)
	require.Equal(t, http.StatusBadGateway, w.Code)
	resp := decode(t, w)
	assert.Equal(t, submission.GenericFailureMessage, resp["error"])
	assert.Equal(t, string(submission.KindDispatch), resp["kind"])
}

func TestSessionFlow_PaymentProof(t *testing.T) {
	rf := newRemoteForm(t)
	router, store := newTestRouter(t, rf)

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"variant": "payment-proof"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["sessionID"].(string)
	base := "/sessions/" + id

	for field, value := range budi {
		w = doJSON(t, router, http.MethodPut, base+"/fields/"+field, map[string]string{"value": value})
		require.Equal(t, http.StatusOK, w.Code)
		_, hasErr := decode(t, w)["error"]
		assert.False(t, hasErr, field)
	}

	w = doJSON(t, router, http.MethodPut, base+"/fields/phone", map[string]string{"value": "0812"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Nomor HP minimal 10 digit", decode(t, w)["error"])
	w = doJSON(t, router, http.MethodPut, base+"/fields/phone", map[string]string{"value": budi["phone"]})
	require.Equal(t, http.StatusOK, w.Code)

	w = doMultipart(t, router, http.MethodPut, base+"/payment-proof", nil,
		&upload{name: "bukti.pdf", mediaType: "application/pdf", data: []byte("%PDF-1.4")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doMultipart(t, router, http.MethodPut, base+"/payment-proof", nil,
		&upload{name: "anim.gif", mediaType: "image/gif", data: []byte("gif")})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, base, nil))
	require.Equal(t, http.StatusOK, w.Code)
	proof := decode(t, w)["paymentProof"].(map[string]any)
	assert.Equal(t, "bukti.pdf", proof["name"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, base+"/payment-proof", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, base+"/submit", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(submission.KindMissingArtifact), decode(t, w)["kind"])

	w = doMultipart(t, router, http.MethodPut, base+"/payment-proof", nil,
		&upload{name: "bukti.pdf", mediaType: "application/pdf", data: []byte("%PDF-1.4")})
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, base+"/submit", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, rf.received(), 1)
	assert.Equal(t, "JVBERi0xLjQ=", rf.received()[0]["paymentProofBase64"])

	_, ok := store.Get(id)
	assert.False(t, ok)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, base+"/submit", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSession_UnknownFieldAndVariant(t *testing.T) {
	router, _ := newTestRouter(t, newRemoteForm(t))

	w := doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"variant": "gold"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/sessions", map[string]string{"variant": "package"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode(t, w)["sessionID"].(string)

	w = doJSON(t, router, http.MethodPut, "/sessions/"+id+"/fields/hobby", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doMultipart(t, router, http.MethodPut, "/sessions/"+id+"/payment-proof", nil,
		&upload{name: "bukti.png", mediaType: "image/png", data: []byte("png")})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/sessions/"+id, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// oversizeJSON streams a body larger than the payload cap without a
// Content-Length, as a chunked upload would arrive.
func oversizeJSON() io.Reader {
	return io.MultiReader(
		strings.NewReader(`{"name":"`),
		strings.NewReader(strings.Repeat("a", maxPayloadBytes+1)),
		strings.NewReader(`"}`),
	)
}

func TestRegister_ChunkedOversizeBody(t *testing.T) {
	rf := newRemoteForm(t)
	router, _ := newTestRouter(t, rf)

	req := httptest.NewRequest(http.MethodPost, "/registration/package", oversizeJSON())
	req.Header.Set("Content-Type", "application/json")
	require.EqualValues(t, -1, req.ContentLength)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "payload too large", decode(t, w)["error"])
	assert.Empty(t, rf.received())
}

func TestRegister_MalformedBodyIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t, newRemoteForm(t))

	req := httptest.NewRequest(http.MethodPost, "/registration/package", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
