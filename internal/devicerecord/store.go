// Package devicerecord persists long-lived per-device metadata — display
// name, device kind, and (for AirPods) the identity/version strings and
// Low-Energy pairing keys extracted from AACP Information and
// ProximityKeysResponse frames — to a JSON file keyed by MAC address.
package devicerecord

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// DeviceKind distinguishes the shape of Information for a device record.
type DeviceKind string

const (
	KindAirPods DeviceKind = "airpods"
	KindUnknown DeviceKind = "unknown"
)

// LEKeys holds the Low-Energy identity/encryption keys recovered from a
// ProximityKeysResponse frame, hex-encoded lower-case.
type LEKeys struct {
	IRK    string `json:"irk_hex"`
	EncKey string `json:"enc_key_hex"`
}

// AirPodsInformation holds the identity/version strings extracted from an
// Information frame plus the LE pairing keys.
type AirPodsInformation struct {
	Name              string `json:"name"`
	ModelNumber       string `json:"model_number"`
	Manufacturer      string `json:"manufacturer"`
	SerialNumber      string `json:"serial_number"`
	Version1          string `json:"version1"`
	Version2          string `json:"version2"`
	HardwareRevision  string `json:"hardware_revision"`
	UpdaterIdentifier string `json:"updater_identifier"`
	LeftSerialNumber  string `json:"left_serial_number"`
	RightSerialNumber string `json:"right_serial_number"`
	Version3          string `json:"version3"`
	LEKeys            LEKeys `json:"le_keys"`
}

// DeviceRecord is the persisted entry for one MAC address. Information is
// nil until an Information or ProximityKeysResponse frame has been
// observed for that device.
type DeviceRecord struct {
	Name        string              `json:"name"`
	Kind        DeviceKind          `json:"type"`
	Information *AirPodsInformation `json:"information,omitempty"`
}

// RecordFile abstracts the on-disk representation of the device map,
// standing in for the "key-value filesystem store" collaborator.
// jsonRecordFile is the only implementation shipped here; it writes the
// literal JSON-file format callers read directly.
type RecordFile interface {
	Load(path string) (map[string]DeviceRecord, error)
	Save(path string, records map[string]DeviceRecord) error
}

type jsonRecordFile struct{}

func (jsonRecordFile) Load(path string) (map[string]DeviceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]DeviceRecord{}, err
	}
	records := map[string]DeviceRecord{}
	if err := json.Unmarshal(data, &records); err != nil {
		return map[string]DeviceRecord{}, err
	}
	return records, nil
}

func (jsonRecordFile) Save(path string, records map[string]DeviceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DefaultPath returns the platform devices path used when a Store is
// constructed without an explicit path: $XDG_CONFIG_HOME/aacp/devices.json
// (or the platform equivalent via os.UserConfigDir).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "aacp", "devices.json")
}

// Store is the persistent mapping from device MAC to device metadata.
// It is safe for concurrent use; callers typically hold it for the
// lifetime of a session manager.
type Store struct {
	mu      sync.Mutex
	path    string
	file    RecordFile
	records map[string]DeviceRecord
	log     *logrus.Entry
}

// Option configures a new Store.
type Option func(*Store)

// WithPath overrides the default platform devices path.
func WithPath(path string) Option {
	return func(s *Store) { s.path = path }
}

// WithRecordFile overrides the on-disk representation; tests substitute
// an in-memory fake here.
func WithRecordFile(f RecordFile) Option {
	return func(s *Store) { s.file = f }
}

// WithLogger attaches a logrus entry used for load/persist diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Store) { s.log = log }
}

// New loads the device record store from disk. A missing file or decode
// failure starts the store with an empty map rather than failing
// construction.
func New(opts ...Option) *Store {
	s := &Store{
		path: DefaultPath(),
		file: jsonRecordFile{},
		log:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}

	records, err := s.file.Load(s.path)
	if err != nil {
		s.log.WithError(err).WithField("path", s.path).Debug("starting device record store with empty map")
		records = map[string]DeviceRecord{}
	}
	s.records = records
	return s
}

// Get returns a copy of the record for mac, if any.
func (s *Store) Get(mac string) (DeviceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[mac]
	return rec, ok
}

// All returns a copy of the entire record map.
func (s *Store) All() map[string]DeviceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]DeviceRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

// MergeInformation updates the AirPods identity/version fields for mac,
// preserving any existing LE keys, and persists the whole map.
func (s *Store) MergeInformation(mac string, info AirPodsInformation) error {
	s.mu.Lock()
	existing, ok := s.records[mac]
	if ok && existing.Information != nil {
		info.LEKeys = existing.Information.LEKeys
	}
	rec := DeviceRecord{Name: info.Name, Kind: KindAirPods, Information: &info}
	s.records[mac] = rec
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

// MergeProximityKey updates the IRK or ENC_KEY for mac, creating a
// default AirPods record (named after the MAC) if none exists yet, and
// persists the whole map.
func (s *Store) MergeProximityKey(mac string, keyType ProximityKeyType, hexData string) error {
	s.mu.Lock()
	rec, ok := s.records[mac]
	if !ok {
		rec = DeviceRecord{Name: mac, Kind: KindAirPods}
	}
	if rec.Information == nil {
		rec.Information = &AirPodsInformation{Name: rec.Name}
	}
	switch keyType {
	case ProximityKeyIRK:
		rec.Information.LEKeys.IRK = hexData
	case ProximityKeyEncKey:
		rec.Information.LEKeys.EncKey = hexData
	}
	s.records[mac] = rec
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	return s.persist(snapshot)
}

func (s *Store) snapshotLocked() map[string]DeviceRecord {
	out := make(map[string]DeviceRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}

func (s *Store) persist(records map[string]DeviceRecord) error {
	if err := s.file.Save(s.path, records); err != nil {
		s.log.WithError(err).WithField("path", s.path).Error("failed to persist device record store")
		return err
	}
	return nil
}

// ProximityKeyType mirrors aacp.ProximityKeyType without importing the
// aacp package, which in turn imports devicerecord; kept as a distinct,
// narrow type to avoid a dependency cycle between the two leaf-most
// components.
type ProximityKeyType uint8

const (
	ProximityKeyIRK    ProximityKeyType = 0x01
	ProximityKeyEncKey ProximityKeyType = 0x04
)
