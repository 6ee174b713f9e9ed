package joblist

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_Lifecycle(t *testing.T) {
	s := NewState()
	assert.Empty(t, s.Jobs)
	assert.Equal(t, 1, s.Page)

	s = s.Replace([]Job{{ID: "1"}, {ID: "2"}})
	s = s.Prepend(Job{ID: "5", Company: "New"})
	assert.Equal(t, []ID{"5", "1", "2"}, ids(s.Jobs))

	s = s.Remove("1")
	assert.Equal(t, []ID{"5", "2"}, ids(s.Jobs))

	s = s.Remove("404")
	assert.Equal(t, []ID{"5", "2"}, ids(s.Jobs))
}

func TestState_KeepsIDsUnique(t *testing.T) {
	s := NewState().Replace([]Job{{ID: "1", Company: "a"}, {ID: "2"}, {ID: "1", Company: "b"}})
	assert.Equal(t, []ID{"1", "2"}, ids(s.Jobs))
	assert.Equal(t, "a", s.Jobs[0].Company)

	s = s.Prepend(Job{ID: "2", Company: "fresh"})
	assert.Equal(t, []ID{"2", "1"}, ids(s.Jobs))
	assert.Equal(t, "fresh", s.Jobs[0].Company)
}

func TestState_TransitionsDoNotAlias(t *testing.T) {
	before := NewState().Replace(makeJobs(3))
	after := before.Remove("2").Prepend(Job{ID: "9"})

	assert.Equal(t, []ID{"1", "2", "3"}, ids(before.Jobs))
	assert.Equal(t, []ID{"9", "1", "3"}, ids(after.Jobs))
}

func TestState_FilterChangesResetPage(t *testing.T) {
	s := NewState().Replace(makeJobs(40)).SelectPage(3)
	require.Len(t, s.CurrentPage(), 10)

	s = s.WithQuery("company 1")
	assert.Equal(t, 1, s.Page)
	// "Company 1", "Company 10".."Company 19"
	assert.Len(t, s.CurrentPage(), 11)

	s = s.SelectPage(2).WithSource(SourceLinkedIn)
	assert.Equal(t, 1, s.Page)
	assert.Empty(t, s.CurrentPage())
}

func TestState_SelectPagePastEnd(t *testing.T) {
	s := NewState().Replace(makeJobs(16)).SelectPage(5)

	assert.Empty(t, s.CurrentPage())
	v := s.View(time.UTC)
	assert.Equal(t, 5, v.Page)
	assert.Equal(t, 2, v.PageCount)
	assert.Empty(t, v.Cards)

	huge := NewState().Replace(makeJobs(3)).SelectPage(4611686018427387905)
	assert.NotPanics(t, func() { v = huge.View(nil) })
	assert.Empty(t, v.Cards)
}

func TestState_ReadMore(t *testing.T) {
	s := NewState().Replace([]Job{{ID: "1", Note: "full text"}})

	opened, ok := s.ReadMore("1")
	require.True(t, ok)
	require.NotNil(t, opened.SelectedNote)
	assert.Equal(t, "full text", *opened.SelectedNote)
	assert.Nil(t, s.SelectedNote)

	closed := opened.CloseNote()
	assert.Nil(t, closed.SelectedNote)

	_, ok = s.ReadMore("2")
	assert.False(t, ok)
}

func TestState_View(t *testing.T) {
	jobs := makeJobs(16)
	jobs[15].CreatedAt = "2024-01-05T10:30:00Z"
	s := NewState().Replace(jobs).SelectPage(2)

	v := s.View(time.UTC)

	require.Len(t, v.Cards, 1)
	assert.Equal(t, ID("16"), v.Cards[0].ID)
	assert.Equal(t, "January 5, 2024", v.Cards[0].DateApplied)
	assert.Equal(t, 2, v.PageCount)
	assert.Equal(t, 16, v.Matching)
	assert.Equal(t, 16, v.Total)
}

func TestState_ViewJSONWithStringIDs(t *testing.T) {
	s := NewState().Replace([]Job{
		{ID: "007", Company: "Acme"},
		{ID: "+5", Company: "Globex"},
		{ID: "12", Company: "Initech"},
	})

	out, err := json.Marshal(s.View(time.UTC))
	require.NoError(t, err)

	var v struct {
		Cards []struct {
			ID json.RawMessage `json:"id"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal(out, &v))
	require.Len(t, v.Cards, 3)
	assert.Equal(t, `"007"`, string(v.Cards[0].ID))
	assert.Equal(t, `"+5"`, string(v.Cards[1].ID))
	assert.Equal(t, `12`, string(v.Cards[2].ID))
}
