package codebase

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/soft_delete"

	"github.com/pgavlin/weave"
)

// ErrCorrupt is returned when stored bytes no longer match the digest they
// were stored with.
var ErrCorrupt = errors.New("stored definition does not match its digest")

// Definition is the compiled form of one hash-addressed term.
type Definition struct {
	ID       int64  `gorm:"primaryKey"`
	Hash     string `gorm:"index:idx_definition_hash,unique"`
	Compiled []byte
	// Digest is the blake3 digest of Compiled, in hex.
	Digest    string
	Size      int
	CreatedAt int64
	/* 0 false 1 true */
	Deleted soft_delete.DeletedAt `gorm:"softDelete:flag;default:0"`
}

func (Definition) TableName() string {
	return "definition"
}

// Name binds a dotted path to a hash.
type Name struct {
	ID   int64  `gorm:"primaryKey"`
	Path string `gorm:"index:idx_name_path,unique"`
	Hash string `gorm:"index:idx_name_hash"`
}

func (Name) TableName() string {
	return "name"
}

// DB is a codebase kept in a SQLite database.
type DB struct {
	db *gorm.DB
}

// OpenDB opens or creates the database at path.
func OpenDB(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Definition{}, &Name{}); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put stores the compiled bytes for hash, replacing any earlier definition,
// including one that was forgotten.
func (d *DB) Put(hash string, compiled []byte) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("`hash`=?", hash).Delete(&Definition{}).Error; err != nil {
			return err
		}
		def := Definition{
			Hash:      hash,
			Compiled:  compiled,
			Digest:    digest(compiled),
			Size:      len(compiled),
			CreatedAt: time.Now().Unix(),
		}
		return tx.Create(&def).Error
	})
}

func (d *DB) Fetch(hash string) ([]byte, error) {
	var def Definition
	err := d.db.Where("`hash`=?", hash).First(&def).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: #%s", weave.ErrTermNotFound, hash)
	case err != nil:
		return nil, err
	case digest(def.Compiled) != def.Digest:
		return nil, fmt.Errorf("%w: #%s", ErrCorrupt, hash)
	}
	return def.Compiled, nil
}

// Forget marks the definition of hash deleted. Names bound to it are kept
// and fail to load until the hash is stored again.
func (d *DB) Forget(hash string) error {
	res := d.db.Where("`hash`=?", hash).Delete(&Definition{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: #%s", weave.ErrTermNotFound, hash)
	}
	return nil
}

// Hashes lists the stored hashes in lexical order.
func (d *DB) Hashes() ([]string, error) {
	var hashes []string
	if err := d.db.Model(&Definition{}).Order("hash").Pluck("hash", &hashes).Error; err != nil {
		return nil, err
	}
	return hashes, nil
}

// Bind points path at hash, replacing any earlier binding of path.
func (d *DB) Bind(path, hash string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("`path`=?", path).Delete(&Name{}).Error; err != nil {
			return err
		}
		return tx.Create(&Name{Path: path, Hash: hash}).Error
	})
}

// Resolve returns the hash bound to path.
func (d *DB) Resolve(path string) (string, error) {
	var name Name
	err := d.db.Where("`path`=?", path).First(&name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: no definition is named %s", weave.ErrTermNotFound, path)
	}
	if err != nil {
		return "", err
	}
	return name.Hash, nil
}

// Names returns every binding ordered by path.
func (d *DB) Names() ([]Name, error) {
	var names []Name
	if err := d.db.Order("path").Find(&names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// Import copies every term of dir into the database and returns the number
// copied.
func (d *DB) Import(dir *Dir) (int, error) {
	hashes, err := dir.Hashes()
	if err != nil {
		return 0, err
	}
	for i, hash := range hashes {
		compiled, err := dir.Fetch(hash)
		if err != nil {
			return i, err
		}
		if err := d.Put(hash, compiled); err != nil {
			return i, fmt.Errorf("importing #%s: %w", hash, err)
		}
	}
	return len(hashes), nil
}
