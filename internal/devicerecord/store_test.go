package devicerecord

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")

	store := New(WithPath(path))

	assert.Empty(t, store.All())
}

func TestMergeInformationPersistsAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	store := New(WithPath(path))

	info := AirPodsInformation{Name: "My AirPods", ModelNumber: "A2031"}
	require.NoError(t, store.MergeInformation("AA:BB:CC:DD:EE:FF", info))

	rec, ok := store.Get("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, KindAirPods, rec.Kind)
	require.NotNil(t, rec.Information)
	assert.Equal(t, "My AirPods", rec.Information.Name)

	_, err := os.Stat(path)
	require.NoError(t, err)

	reloaded := New(WithPath(path))
	rec2, ok := reloaded.Get("AA:BB:CC:DD:EE:FF")
	require.True(t, ok)
	assert.Equal(t, "A2031", rec2.Information.ModelNumber)
}

// TestMergeInformationPreservesExistingKeys checks that re-merging
// Information does not clear previously recovered LE keys.
func TestMergeInformationPreservesExistingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	store := New(WithPath(path))

	mac := "AA:BB:CC:DD:EE:FF"
	require.NoError(t, store.MergeProximityKey(mac, ProximityKeyIRK, "0011223344556677"))
	require.NoError(t, store.MergeInformation(mac, AirPodsInformation{Name: "Pods"}))

	rec, ok := store.Get(mac)
	require.True(t, ok)
	assert.Equal(t, "0011223344556677", rec.Information.LEKeys.IRK)
	assert.Equal(t, "Pods", rec.Information.Name)
}

// TestMergeProximityKeyDoesNotClearOtherKey checks that merging one LE
// key kind leaves the other untouched.
func TestMergeProximityKeyDoesNotClearOtherKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	store := New(WithPath(path))

	mac := "AA:BB:CC:DD:EE:FF"
	require.NoError(t, store.MergeProximityKey(mac, ProximityKeyIRK, "irkhex"))
	require.NoError(t, store.MergeProximityKey(mac, ProximityKeyEncKey, "enckeyhex"))

	rec, ok := store.Get(mac)
	require.True(t, ok)
	assert.Equal(t, "irkhex", rec.Information.LEKeys.IRK)
	assert.Equal(t, "enckeyhex", rec.Information.LEKeys.EncKey)
}

func TestLoadCorruptFileStartsEmptyRatherThanFailing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	store := New(WithPath(path))
	assert.Empty(t, store.All())
}

func TestSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devices.json")
	store := New(WithPath(path))

	require.NoError(t, store.MergeInformation("AA:BB:CC:DD:EE:FF", AirPodsInformation{Name: "Pods"}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away, not left behind")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
