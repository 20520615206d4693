package echoapi

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/tests"
)

func Test_adminMiddleware(t *testing.T) {
	env := setup(t)
	nobody := testutil.CreateUser(t, env.usrRepo, "Nobody", "nobody", "", "pwd", nil, true)

	env.run(t, []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors",
			wantCode: http.StatusUnauthorized,
			wantData: marshalObj(t, errMissingToken),
		},
		{
			name:     "not an admin",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors",
			token:    env.token(t, nobody),
			wantCode: http.StatusForbidden,
			wantData: marshalObj(t, errForbidden),
		},
		{
			name:     "admin",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
	})
}

func Test_tutorApi_query(t *testing.T) {
	env := setup(t)

	now := time.Now()
	zoe := testutil.CreateTutor(t, env.tutRepo, "Zoe Banda", "MSc Physics", false, now.Add(-3*time.Hour))
	ann := testutil.CreateTutor(t, env.tutRepo, "Ann Phiri", "BEd Maths", false, now.Add(-2*time.Hour))
	old := testutil.CreateTutor(t, env.tutRepo, "Old Chirwa", "BSc Physics", true, now.Add(-time.Hour))

	env.run(t, []httpTest{
		{
			name:     "all, newest id first",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{old, ann, zoe}),
		},
		{
			name:     "archived",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors?status=archived",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{old}),
		},
		{
			name:     "search active",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors?search=physics&status=active",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{zoe}),
		},
		{
			name:     "ordering",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors?ordering=-name",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{zoe, old, ann}),
		},
		{
			name:     "unknown ordering field is ignored",
			method:   http.MethodGet,
			path:     "/v1/admin/tutors?ordering=password,created_at",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{zoe, ann, old}),
		},
	})
}

func Test_tutorApi_lifecycle(t *testing.T) {
	env := setup(t)
	photoPrefix := env.conf.Storage.PublicBaseURL + "/" + tutor.PhotoBucket + "/tutor_"

	env.run(t, []httpTest{
		{
			name:     "name required",
			method:   http.MethodPost,
			path:     "/v1/admin/tutors",
			token:    env.adminTkn,
			body:     []byte(`{"name": "  ", "qualification": "PhD"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required"}`),
		},
	})

	// create with photo
	req := newMultipartRequest(t, http.MethodPost, "/v1/admin/tutors", env.adminTkn,
		map[string]string{"name": " Grace Mvula ", "qualification": "PhD Chemistry", "bio": "Loves titrations"}, pngBytes)
	rec := env.serve(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var grace tutor.Tutor
	decode(t, rec, &grace)
	assert.Equal(t, "Grace Mvula", grace.Name)
	assert.Equal(t, "PhD Chemistry", grace.Qualification)
	assert.False(t, grace.Archived)
	require.True(t, strings.HasPrefix(grace.ProfilePicture, photoPrefix), grace.ProfilePicture)
	assert.True(t, strings.HasSuffix(grace.ProfilePicture, ".png"))
	assert.Equal(t, 1, env.store.Len())
	name := strings.TrimPrefix(grace.ProfilePicture, env.conf.Storage.PublicBaseURL+"/"+tutor.PhotoBucket+"/")
	content, ok := env.store.Object(tutor.PhotoBucket, name)
	require.True(t, ok)
	assert.Equal(t, pngBytes, content)

	path := "/v1/admin/tutors/" + strconv.Itoa(grace.ID)

	t.Run("photo must be an image", func(t *testing.T) {
		req := newMultipartRequest(t, http.MethodPost, "/v1/admin/tutors", env.adminTkn,
			map[string]string{"name": "Text Person"}, []byte("just some text"))
		rec := env.serve(req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		ok, err := jsonBytesEqual(t, rec.Body.Bytes(), []byte(`{"photo": "only JPEG, PNG or WEBP images are allowed"}`))
		assert.NoError(t, err)
		assert.True(t, ok, rec.Body.String())
		assert.Equal(t, 1, env.store.Len())
	})

	t.Run("update keeps blank fields", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPut, path, env.adminTkn, []byte(`{"qualification": "PhD Organic Chemistry"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got tutor.Tutor
		decode(t, rec, &got)
		assert.Equal(t, "Grace Mvula", got.Name)
		assert.Equal(t, "PhD Organic Chemistry", got.Qualification)
		assert.Equal(t, "Loves titrations", got.Bio)
		assert.Equal(t, grace.ProfilePicture, got.ProfilePicture)
	})

	t.Run("update replaces the photo", func(t *testing.T) {
		req := newMultipartRequest(t, http.MethodPut, path, env.adminTkn, map[string]string{"bio": ""}, pngBytes)
		rec := env.serve(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got tutor.Tutor
		decode(t, rec, &got)
		assert.Empty(t, got.Bio)
		assert.True(t, strings.HasPrefix(got.ProfilePicture, photoPrefix))
		assert.NotEqual(t, grace.ProfilePicture, got.ProfilePicture)
		assert.Equal(t, 1, env.store.Len(), "the old photo is removed")
		grace = got
	})

	t.Run("archive hides from the public site", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPost, path+"/archive", env.adminTkn, nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got tutor.Tutor
		decode(t, rec, &got)
		assert.True(t, got.Archived)

		rec = env.serve(newAuthRequest(http.MethodGet, "/v1/tutors", "", nil))
		assert.JSONEq(t, `[]`, rec.Body.String())
		rec = env.serve(newAuthRequest(http.MethodGet, path, env.adminTkn, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.serve(newAuthRequest(http.MethodPost, path+"/unarchive", env.adminTkn, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &got)
		assert.False(t, got.Archived)
	})

	t.Run("delete removes the photo", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodDelete, path, env.adminTkn, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 0, env.store.Len())

		rec = env.serve(newAuthRequest(http.MethodGet, path, env.adminTkn, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = env.serve(newAuthRequest(http.MethodDelete, path, env.adminTkn, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	assert.Equal(t, []string{
		"tutor.created", "tutor.updated", "tutor.updated", "tutor.archived", "tutor.unarchived", "tutor.deleted",
	}, env.events.RoutingKeys())
	for _, evt := range env.events.Events() {
		assert.Equal(t, "admin", evt.Actor)
		assert.Equal(t, grace.ID, evt.EntityID)
	}
}
