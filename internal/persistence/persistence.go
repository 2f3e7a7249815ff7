package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shetautnetjer/alienfan/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketEngine    = "engine"
	BucketActuators = "actuators"

	KeyLastPolicy = "lastPolicy"
)

// PolicyRecord is the optional last-applied-policy record, persisted for
// restart convenience. It is not authoritative: discovery re-verifies
// actual hardware state on every startup.
type PolicyRecord struct {
	Name       string    `json:"name"`
	Duty       int       `json:"duty,omitempty"`
	TargetTemp int       `json:"targetTemp,omitempty"`
	MinDuty    int       `json:"minDuty,omitempty"`
	MaxDuty    int       `json:"maxDuty,omitempty"`
	RampBand   int       `json:"rampBand,omitempty"`
	ExitTemp   int       `json:"exitTemp,omitempty"`
	SavedAt    time.Time `json:"savedAt"`
}

// ActuatorRecord is an audit snapshot of one actuator at shutdown.
type ActuatorRecord struct {
	ID             string    `json:"id"`
	Capability     string    `json:"capability"`
	LastDuty       int       `json:"lastDuty"`
	VerifyFailures int       `json:"verifyFailures"`
	SavedAt        time.Time `json:"savedAt"`
}

type Persistence interface {
	Init() error

	SaveLastPolicy(record PolicyRecord) error
	LoadLastPolicy() (PolicyRecord, error)

	SaveActuatorRecord(record ActuatorRecord) error
	LoadActuatorRecord(id string) (ActuatorRecord, error)
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	return &persistence{
		dbPath: dbPath,
	}
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (p persistence) SaveLastPolicy(record PolicyRecord) error {
	return p.put(BucketEngine, KeyLastPolicy, record)
}

func (p persistence) LoadLastPolicy() (PolicyRecord, error) {
	var record PolicyRecord
	err := p.get(BucketEngine, KeyLastPolicy, &record)
	return record, err
}

func (p persistence) SaveActuatorRecord(record ActuatorRecord) error {
	return p.put(BucketActuators, record.ID, record)
}

func (p persistence) LoadActuatorRecord(id string) (ActuatorRecord, error) {
	var record ActuatorRecord
	err := p.get(BucketActuators, id, &record)
	return record, err
}

func (p persistence) put(bucket string, key string, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(key), data)
	})
}

func (p persistence) get(bucket string, key string, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return os.ErrNotExist
		}
		data := b.Get([]byte(key))
		if data == nil {
			return os.ErrNotExist
		}
		return json.Unmarshal(data, value)
	})
}
