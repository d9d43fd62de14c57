package codec

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/bubbly/pkg/core"
)

func TestLookup(t *testing.T) {
	s, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "json", s.Name())

	s, err = Lookup("YAML")
	require.NoError(t, err)
	assert.Equal(t, ".yaml", s.Ext())

	_, err = Lookup("toml")
	assert.Error(t, err)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	notes := []core.Note{
		{
			ID:         uuid.MustParse("6f1c2b7e-8a53-4d0e-9b1a-2f3c4d5e6f70"),
			Title:      "groceries",
			Content:    "milk, eggs",
			CreatedAt:  time.Date(2024, 5, 15, 8, 30, 0, 0, time.UTC),
			IsFavorite: true,
		},
	}

	for name, s := range DefaultSerializers() {
		t.Run(name, func(t *testing.T) {
			blob, err := s.Encode("notes", notes)
			require.NoError(t, err)
			assert.Contains(t, string(blob), "version")
			assert.Contains(t, string(blob), "notes")

			var got []core.Note
			version, err := s.Decode(blob, &got)
			require.NoError(t, err)
			assert.Equal(t, CurrentVersion, version)
			if diff := cmp.Diff(notes, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeLegacyJSON(t *testing.T) {
	s := NewJSONSerializer()

	t.Run("bare array with reference-date timestamps", func(t *testing.T) {
		blob := []byte(`[{"id":"6F1C2B7E-8A53-4D0E-9B1A-2F3C4D5E6F70","title":"call","time":86400,"isRepeating":false,"isCompleted":true}]`)

		var got []core.Reminder
		version, err := s.Decode(blob, &got)
		require.NoError(t, err)
		assert.Zero(t, version)
		require.Len(t, got, 1)
		assert.Equal(t, "call", got[0].Title)
		assert.True(t, got[0].IsCompleted)
		assert.True(t, got[0].Time.Equal(time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("bare settings object keeps defaults", func(t *testing.T) {
		var got core.Settings
		version, err := s.Decode([]byte(`{"notificationsEnabled":false}`), &got)
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.True(t, got.AnimationsEnabled)
		assert.False(t, got.NotificationsEnabled)
	})
}

func TestDecodeLegacyYAML(t *testing.T) {
	blob := []byte("animationsEnabled: false\n")

	var got core.Settings
	version, err := NewYAMLSerializer().Decode(blob, &got)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, got.AnimationsEnabled)
	assert.True(t, got.NotificationsEnabled)
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	cases := map[string][]byte{
		"json": []byte(`{"version":7,"kind":"events","data":[]}`),
		"yaml": []byte("version: 7\nkind: events\ndata: []\n"),
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := Lookup(name)
			require.NoError(t, err)

			var got []core.Event
			version, err := s.Decode(blob, &got)
			assert.ErrorIs(t, err, ErrUnsupportedVersion)
			assert.Equal(t, 7, version)
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	for name, s := range DefaultSerializers() {
		t.Run(name, func(t *testing.T) {
			var got []core.Note
			_, err := s.Decode([]byte("   "), &got)
			assert.Error(t, err)
		})
	}

	var got []core.Note
	_, err := NewJSONSerializer().Decode([]byte(`[{"id":`), &got)
	assert.Error(t, err)
}
