package echoapi

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tutorhub/core/curriculum"
	"github.com/trezcool/tutorhub/core/pricing"
	"github.com/trezcool/tutorhub/core/tutor"
	"github.com/trezcool/tutorhub/tests"
)

func Test_publicApi_tutors(t *testing.T) {
	env := setup(t)

	zoe := testutil.CreateTutor(t, env.tutRepo, "Zoe Banda", "MSc Physics", false)
	ann := testutil.CreateTutor(t, env.tutRepo, "ann Phiri", "BEd", false)
	gone := testutil.CreateTutor(t, env.tutRepo, "Gone Tutor", "", true)

	env.run(t, []httpTest{
		{
			name:     "active tutors by name",
			method:   http.MethodGet,
			path:     "/v1/tutors",
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []tutor.Tutor{ann, zoe}),
		},
		{
			name:     "retrieve",
			method:   http.MethodGet,
			path:     "/v1/tutors/" + strconv.Itoa(zoe.ID),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, zoe),
		},
		{
			name:     "archived is hidden",
			method:   http.MethodGet,
			path:     "/v1/tutors/" + strconv.Itoa(gone.ID),
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: tutor.ErrNotFound.Error()}),
		},
		{
			name:     "unknown",
			method:   http.MethodGet,
			path:     "/v1/tutors/999",
			wantCode: http.StatusNotFound,
		},
		{
			name:     "invalid id",
			method:   http.MethodGet,
			path:     "/v1/tutors/abc",
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: "not found"}),
		},
	})
}

func Test_publicApi_curriculums(t *testing.T) {
	env := setup(t)

	msce := testutil.CreateCurriculum(t, env.curRepo, "MSCE", "Malawi School Certificate", 20000, false)
	igcse := testutil.CreateCurriculum(t, env.curRepo, "IGCSE", "", 35000, false)
	old := testutil.CreateCurriculum(t, env.curRepo, "Old", "", 1000, true)
	bio := testutil.CreateSubject(t, env.curRepo, msce.ID, "Biology")
	chem := testutil.CreateSubject(t, env.curRepo, msce.ID, "Chemistry")
	testutil.CreateSubject(t, env.curRepo, old.ID, "Latin")

	t.Run("priced in USD", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodGet, "/v1/curriculums?currency=usd", "", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []curriculum.PricedCurriculum
		decode(t, rec, &got)
		require.Len(t, got, 2)

		assert.Equal(t, igcse.ID, got[0].ID)
		assert.Equal(t, "USD", got[0].DisplayCurrency)
		assert.True(t, decimal.RequireFromString("20.3").Equal(got[0].DisplayPrice), got[0].DisplayPrice.String())
		assert.Empty(t, got[0].Subjects)

		assert.Equal(t, msce.ID, got[1].ID)
		assert.True(t, decimal.RequireFromString("11.6").Equal(got[1].DisplayPrice), got[1].DisplayPrice.String())
		assert.Equal(t, []curriculum.Subject{bio, chem}, got[1].Subjects)
	})

	t.Run("base currency by default", func(t *testing.T) {
		rec := env.serve(newAuthRequest(http.MethodGet, "/v1/curriculums", "", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []curriculum.PricedCurriculum
		decode(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "MWK", got[1].DisplayCurrency)
		assert.True(t, msce.Price.Equal(got[1].DisplayPrice))
	})

	t.Run("loading rates", func(t *testing.T) {
		env.rates.set(pricing.BaseOnly("MWK"), true)
		defer env.rates.set(pricing.NewRateTable("MWK", testRates), false)

		rec := env.serve(newAuthRequest(http.MethodGet, "/v1/curriculums?currency=USD", "", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got []curriculum.PricedCurriculum
		decode(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, "MWK", got[0].DisplayCurrency)
	})

	env.run(t, []httpTest{
		{
			name:     "subjects",
			method:   http.MethodGet,
			path:     "/v1/curriculums/" + strconv.Itoa(msce.ID) + "/subjects",
			wantCode: http.StatusOK,
			wantData: marshalObj(t, []curriculum.Subject{bio, chem}),
		},
		{
			name:     "no subjects",
			method:   http.MethodGet,
			path:     "/v1/curriculums/" + strconv.Itoa(igcse.ID) + "/subjects",
			wantCode: http.StatusOK,
			wantData: []byte(`[]`),
		},
		{
			name:     "archived curriculum subjects",
			method:   http.MethodGet,
			path:     "/v1/curriculums/" + strconv.Itoa(old.ID) + "/subjects",
			wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: curriculum.ErrNotFound.Error()}),
		},
	})
}

func Test_home(t *testing.T) {
	env := setup(t)
	rec := env.serve(newAuthRequest(http.MethodGet, "/", "", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Tutorhub API!", rec.Body.String())
}
