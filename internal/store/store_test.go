package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleTexts() []Text {
	return []Text{
		{
			Name: "Bodhicaryavatara",
			Witnesses: []Witness{
				{
					Name: "Derge", IsBase: true, Content: "byang chub sems dpa'",
					Annotations: []Annotation{
						{Start: 6, Length: 4, Content: "sem", Type: "variant"},
						{Start: 0, Length: 5, Content: "byang", Type: "note"},
					},
				},
				{
					Name: "Peking", Content: "byang chub sem dpa'",
					Annotations: []Annotation{
						{Start: 11, Length: 3, Content: "sems", Type: "variant"},
					},
				},
			},
		},
		{Name: "Heart Sutra"},
	}
}

func TestStore_ListAndGet(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	texts := sampleTexts()
	require.NoError(t, st.Import(ctx, texts))

	got, err := st.ListTexts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bodhicaryavatara", got[0].Name)
	assert.Equal(t, "Heart Sutra", got[1].Name)
	assert.Less(t, got[0].ID, got[1].ID)

	text, err := st.GetText(ctx, texts[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Heart Sutra", text.Name)
}

func TestStore_ListWitnesses(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	texts := sampleTexts()
	require.NoError(t, st.Import(ctx, texts))

	witnesses, err := st.ListWitnesses(ctx, texts[0].ID)
	require.NoError(t, err)
	require.Len(t, witnesses, 2)
	assert.Equal(t, "Derge", witnesses[0].Name)
	assert.True(t, witnesses[0].IsBase)
	assert.Equal(t, "Peking", witnesses[1].Name)

	witnesses, err = st.ListWitnesses(ctx, texts[1].ID)
	require.NoError(t, err)
	assert.Empty(t, witnesses)
}

func TestStore_ListAnnotations(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	texts := sampleTexts()
	require.NoError(t, st.Import(ctx, texts))

	annotations, err := st.ListAnnotations(ctx, texts[0].ID)
	require.NoError(t, err)
	require.Len(t, annotations, 3)
	// ordered by witness, then start
	assert.Equal(t, "byang", annotations[0].Content)
	assert.Equal(t, "sem", annotations[1].Content)
	assert.Equal(t, "sems", annotations[2].Content)
	assert.Equal(t, texts[0].Witnesses[1].ID, annotations[2].WitnessID)
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.GetText(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.ListWitnesses(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.ListAnnotations(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.EqualError(t, err, `unsupported database driver "mysql"`)
}
