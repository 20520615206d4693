package echoapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/pricing"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/core/user"
	"github.com/trezcool/tutorhub/services/email"
	"github.com/trezcool/tutorhub/services/events"
	"github.com/trezcool/tutorhub/services/storage"
	"github.com/trezcool/tutorhub/storage/database/inmem"
	"github.com/trezcool/tutorhub/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}

	testRates = map[string]float64{"USD": 0.00058, "GBP": 0.00046, "EUR": 0.00053}
)

func TestMain(m *testing.M) {
	// as set by the API binary
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

// fakeRates is a RatesSource whose state tests switch at will.
type fakeRates struct {
	mu      sync.Mutex
	table   pricing.RateTable
	loading bool
}

func (r *fakeRates) Current() (pricing.RateTable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.table, r.loading
}

func (r *fakeRates) set(table pricing.RateTable, loading bool) {
	r.mu.Lock()
	r.table, r.loading = table, loading
	r.mu.Unlock()
}

type testEnv struct {
	conf     *core.Config
	srv      *Server
	usrRepo  user.Repository
	tutRepo  tutor.Repository
	curRepo  curriculum.Repository
	store    *storagesvc.MemoryStore
	events   *eventsvc.Recorder
	mail     *emailsvc.ConsoleServiceMock
	rates    *fakeRates
	admin    user.User
	adminTkn string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	require.NoError(t, core.ParseEmailTemplates(&core.NopLogger{}, true))

	// set up DB & repos
	db := inmemdb.Open()
	env := &testEnv{
		conf:    conf,
		usrRepo: inmemdb.NewUserRepository(db),
		tutRepo: inmemdb.NewTutorRepository(db),
		curRepo: inmemdb.NewCurriculumRepository(db),
		store:   storagesvc.NewMemoryStore(conf.Storage.PublicBaseURL),
		events:  new(eventsvc.Recorder),
		mail:    emailsvc.NewConsoleServiceMock(conf),
		rates:   &fakeRates{table: pricing.NewRateTable("MWK", testRates)},
	}

	// set up services
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)

	env.srv = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        &core.NopLogger{},
		UserSvc:       user.NewService(env.usrRepo, env.mail, conf),
		TutorSvc:      tutor.NewService(env.tutRepo, env.store, env.events, &core.NopLogger{}),
		CurriculumSvc: curriculum.NewService(env.curRepo, env.events),
		Rates:         env.rates,
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = env.srv.Close() })

	env.admin = testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@test.test", "Adm1n-pwd", []string{user.RoleAdmin}, true)
	env.adminTkn = env.token(t, env.admin)
	return env
}

func (env *testEnv) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := env.srv.auth.generateToken(env.srv.auth.claimsFor(usr))
	require.NoError(t, err)
	return token
}

func (env *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (env *testEnv) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, env.serve(req))
		})
	}
}

func newAuthRequest(method, path, token string, data []byte) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// newMultipartRequest builds a multipart form; `photo` is sent as the photo file part when not nil.
func newMultipartRequest(t *testing.T, method, path, token string, fields map[string]string, photo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if photo != nil {
		part, err := w.CreateFormFile(photoField, "photo.bin")
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// pngBytes is enough of a PNG for content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
