package echoapi

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/tests"
)

func Test_curriculumApi_query(t *testing.T) {
	env := setup(t)

	msce := testutil.CreateCurriculum(t, env.curRepo, "MSCE", "Malawi School Certificate", 20000, false)
	igcse := testutil.CreateCurriculum(t, env.curRepo, "IGCSE", "Cambridge", 35000, false)
	jce := testutil.CreateCurriculum(t, env.curRepo, "JCE", "", 10000, true)

	env.run(t, []httpTest{
		{
			name:     "all",
			method:   http.MethodGet,
			path:     "/v1/admin/curriculums",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []curriculum.Curriculum{jce, igcse, msce}),
		},
		{
			name:     "by price",
			method:   http.MethodGet,
			path:     "/v1/admin/curriculums?ordering=-price",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []curriculum.Curriculum{igcse, msce, jce}),
		},
		{
			name:     "search description",
			method:   http.MethodGet,
			path:     "/v1/admin/curriculums?search=cambridge",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []curriculum.Curriculum{igcse}),
		},
		{
			name:     "archived",
			method:   http.MethodGet,
			path:     "/v1/admin/curriculums?status=archived",
			token:    env.adminTkn,
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []curriculum.Curriculum{jce}),
		},
	})
}

func Test_curriculumApi_lifecycle(t *testing.T) {
	env := setup(t)

	env.run(t, []httpTest{
		{
			name:     "negative price",
			method:   http.MethodPost,
			path:     "/v1/admin/curriculums",
			token:    env.adminTkn,
			body:     []byte(`{"name": "MSCE", "price": -1}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"price": "price cannot be negative"}`),
		},
		{
			name:     "name required",
			method:   http.MethodPost,
			path:     "/v1/admin/curriculums",
			token:    env.adminTkn,
			body:     []byte(`{"price": 100}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name": "this field is required"}`),
		},
		{
			name:     "subject of unknown curriculum",
			method:   http.MethodPost,
			path:     "/v1/admin/curriculums/999/subjects",
			token:    env.adminTkn,
			body:     []byte(`{"name": "Biology"}`),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: curriculum.ErrNotFound.Error()}),
		},
	})

	rec := env.serve(newAuthRequest(http.MethodPost, "/v1/admin/curriculums", env.adminTkn,
		[]byte(`{"name": " MSCE ", "description": "Malawi School Certificate", "price": "20000"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var msce curriculum.Curriculum
	decode(t, rec, &msce)
	assert.Equal(t, "MSCE", msce.Name)
	assert.Equal(t, "Malawi School Certificate", msce.Description.String)
	assert.True(t, decimal.NewFromInt(20000).Equal(msce.Price))

	path := "/v1/admin/curriculums/" + strconv.Itoa(msce.ID)

	t.Run("update clears the description", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPut, path, env.adminTkn, []byte(`{"description": "", "price": 25000.5}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got curriculum.Curriculum
		decode(t, rec, &got)
		assert.Equal(t, "MSCE", got.Name)
		assert.False(t, got.Description.Valid)
		assert.True(t, decimal.RequireFromString("25000.5").Equal(got.Price), got.Price.String())
	})

	var bio curriculum.Subject
	t.Run("subjects", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPost, path+"/subjects", env.adminTkn, []byte(`{"name": "Biology"}`)))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &bio)
		assert.Equal(t, msce.ID, bio.CurriculumID)

		rec = env.serve(newAuthRequest(http.MethodPost, path+"/subjects", env.adminTkn, []byte(`{"name": ""}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		subjectPath := "/v1/admin/subjects/" + strconv.Itoa(bio.ID)
		rec = env.serve(newAuthRequest(http.MethodPut, subjectPath, env.adminTkn, []byte(`{"name": "Human Biology"}`)))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &bio)
		assert.Equal(t, "Human Biology", bio.Name)

		rec = env.serve(newAuthRequest(http.MethodGet, subjectPath, env.adminTkn, nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.serve(newAuthRequest(http.MethodGet, path+"/subjects", env.adminTkn, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, string(marshalObj(t, []curriculum.Subject{bio})), rec.Body.String())
	})

	t.Run("archive hides from the public site", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodPost, path+"/archive", env.adminTkn, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.serve(newAuthRequest(http.MethodGet, "/v1/curriculums", "", nil))
		assert.JSONEq(t, `[]`, rec.Body.String())
		rec = env.serve(newAuthRequest(http.MethodGet, path+"/subjects", env.adminTkn, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "admins still see archived curriculums")

		rec = env.serve(newAuthRequest(http.MethodPost, path+"/unarchive", env.adminTkn, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		rec = env.serve(newAuthRequest(http.MethodGet, "/v1/curriculums", "", nil))
		var got []curriculum.PricedCurriculum
		decode(t, rec, &got)
		assert.Len(t, got, 1)
	})

	t.Run("delete cascades to subjects", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodDelete, path, env.adminTkn, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.serve(newAuthRequest(http.MethodGet, "/v1/admin/subjects/"+strconv.Itoa(bio.ID), env.adminTkn, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, string(marshalObj(t, httpErr{Error: curriculum.ErrSubjectNotFound.Error()})), rec.Body.String())
	})

	assert.Equal(t, []string{
		"curriculum.created", "curriculum.updated", "subject.created", "subject.updated",
		"curriculum.archived", "curriculum.unarchived", "curriculum.deleted",
	}, env.events.RoutingKeys())
}
