package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/encoreinstant/avito-moderation/internal/entity"
)

func nonDefaultState() State {
	cat := int64(12)
	minPrice := 100.0
	maxPrice := 2500.5
	return State{
		Search:     "iphone",
		Statuses:   []entity.AdStatus{entity.StatusApproved, entity.StatusRejected},
		CategoryID: &cat,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
		SortBy:     SortByPrice,
		SortOrder:  SortAsc,
		Page:       3,
		Limit:      20,
	}
}

func TestEncode_OmitsDefaults(t *testing.T) {
	v := Encode(Defaults())
	assert.Empty(t, v.Get("search"))
	assert.Empty(t, v.Get("sortBy"))
	assert.Empty(t, v.Get("sortOrder"))
	assert.Empty(t, v.Get("page"))
	assert.Empty(t, v.Get("limit"))
	// statuses are always emitted so that a shared link pins the selection
	assert.Equal(t, "pending", v.Get("status"))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	s := nonDefaultState()
	decoded, recognized := Decode(Encode(s))
	assert.True(t, recognized)
	assert.Equal(t, s, decoded)
}

func TestEncode_Idempotent(t *testing.T) {
	s := nonDefaultState()
	assert.Equal(t, Encode(s).Encode(), Encode(s).Encode())
}

func TestDecode_StatusCommaList(t *testing.T) {
	v := url.Values{"status": []string{"approved,rejected"}}
	s, recognized := Decode(v)
	assert.True(t, recognized)
	assert.Equal(t, []entity.AdStatus{entity.StatusApproved, entity.StatusRejected}, s.Statuses)
}

func TestDecode_StatusRepeatedKeys(t *testing.T) {
	v := url.Values{"status": []string{"approved", "rejected"}}
	s, recognized := Decode(v)
	assert.True(t, recognized)
	assert.Equal(t, []entity.AdStatus{entity.StatusApproved, entity.StatusRejected}, s.Statuses)
}

func TestDecode_EmptyNumericMeansUnset(t *testing.T) {
	v := url.Values{"minPrice": []string{""}, "categoryId": []string{""}}
	s, recognized := Decode(v)
	assert.True(t, recognized, "empty values still count as recognized parameters")
	assert.Nil(t, s.MinPrice)
	assert.Nil(t, s.CategoryID)
}

func TestDecode_MalformedNumericDropped(t *testing.T) {
	v := url.Values{"minPrice": []string{"abc"}, "page": []string{"zero"}}
	s, _ := Decode(v)
	assert.Nil(t, s.MinPrice)
	assert.Equal(t, DefaultPage, s.Page)
}

func TestDecode_UnknownStatusIgnored(t *testing.T) {
	v := url.Values{"status": []string{"bogus"}}
	s, recognized := Decode(v)
	assert.False(t, recognized)
	assert.Equal(t, Defaults().Statuses, s.Statuses)
}

func TestResolve_QueryWinsOverSavedRecord(t *testing.T) {
	saved, err := EncodeSaved(nonDefaultState())
	require.NoError(t, err)

	query := url.Values{"search": []string{"детская коляска"}}
	s := Resolve(query, saved)

	assert.Equal(t, "детская коляска", s.Search)
	// No merge: the rest comes from defaults, not from the record.
	assert.Equal(t, Defaults().Statuses, s.Statuses)
	assert.Nil(t, s.CategoryID)
}

func TestResolve_FallsBackToSavedRecord(t *testing.T) {
	saved, err := EncodeSaved(nonDefaultState())
	require.NoError(t, err)

	s := Resolve(url.Values{}, saved)
	assert.Equal(t, nonDefaultState(), s)
}

func TestResolve_CorruptSavedRecordFallsBackToDefaults(t *testing.T) {
	s := Resolve(url.Values{}, []byte("{not json"))
	assert.Equal(t, Defaults(), s)
}

func TestResolve_NoInputsYieldsDefaults(t *testing.T) {
	assert.Equal(t, Defaults(), Resolve(url.Values{}, nil))
}

func TestDecodeSaved_FillsMissingFields(t *testing.T) {
	s, err := DecodeSaved([]byte(`{"search":"шкаф"}`))
	require.NoError(t, err)
	assert.Equal(t, "шкаф", s.Search)
	assert.Equal(t, Defaults().Statuses, s.Statuses)
	assert.Equal(t, DefaultPage, s.Page)
	assert.Equal(t, DefaultLimit, s.Limit)
}

func TestDecodeSaved_EmptyStatusesRestored(t *testing.T) {
	s, err := DecodeSaved([]byte(`{"statuses":[]}`))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Statuses, s.Statuses)
}

func TestFingerprint_StatusOrderInsensitive(t *testing.T) {
	a := Defaults()
	a.Statuses = []entity.AdStatus{entity.StatusApproved, entity.StatusPending}
	b := Defaults()
	b.Statuses = []entity.AdStatus{entity.StatusPending, entity.StatusApproved}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_IncludesPagination(t *testing.T) {
	a := Defaults()
	b := Defaults()
	b.Page = 2
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestNavigationFingerprint_IgnoresPagination(t *testing.T) {
	a := nonDefaultState()
	b := nonDefaultState()
	b.Page = 9
	b.Limit = 50
	assert.Equal(t, NavigationFingerprint(a), NavigationFingerprint(b))
	assert.NotEqual(t, NavigationFingerprint(a), Fingerprint(a))
}
