// Package migration applies and rolls back schema changes in batches.
//
// Each file under database/migrations registers itself from init:
//
//	func init() {
//	    migration.Register("2024_01_01_000001_create_roles_table", createRoles{})
//	}
package migration

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:191;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type named struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry = map[string]Migration{}
)

// Register adds m under name. Names sort chronologically, so prefix them
// with a timestamp. Registering a name twice panics.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("migration: duplicate name " + name)
	}
	registry[name] = m
}

func registered() []named {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]named, 0, len(registry))
	for n, m := range registry {
		out = append(out, named{name: n, m: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

var ErrNoMigrations = errors.New("migration: none registered")

// Runner applies the registered migrations to one database.
type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New returns a runner that reports progress to out (io.Discard is fine).
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Run applies every pending migration as one new batch and returns how
// many ran.
func (r *Runner) Run() (int, error) {
	all := registered()
	if len(all) == 0 {
		return 0, ErrNoMigrations
	}
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	done, err := r.ran()
	if err != nil {
		return 0, fmt.Errorf("migration: load history: %w", err)
	}

	batch := r.lastBatch() + 1
	count := 0
	for _, n := range all {
		if _, ok := done[n.name]; ok {
			continue
		}
		fmt.Fprintf(r.out, "Migrating: %s\n", n.name)
		if err := n.m.Up(r.db); err != nil {
			return count, fmt.Errorf("migration: %s up: %w", n.name, err)
		}
		if err := r.db.Create(&record{Name: n.name, Batch: batch}).Error; err != nil {
			return count, fmt.Errorf("migration: record %s: %w", n.name, err)
		}
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return count, nil
}

// Rollback reverts the most recent batch, newest first.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}
	last := r.lastBatch()
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("name desc").Find(&rows).Error; err != nil {
		return 0, err
	}

	regMu.Lock()
	lookup := make(map[string]Migration, len(registry))
	for k, v := range registry {
		lookup[k] = v
	}
	regMu.Unlock()

	count := 0
	for _, row := range rows {
		m, ok := lookup[row.Name]
		if !ok {
			return count, fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		fmt.Fprintf(r.out, "Rolling back: %s\n", row.Name)
		if err := m.Down(r.db); err != nil {
			return count, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		if err := r.db.Delete(&row).Error; err != nil {
			return count, err
		}
		count++
	}
	logger.Info("migration: rolled back", "count", count, "batch", last)
	return count, nil
}

// Status is one line of `migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}
	var out []Status
	for _, n := range registered() {
		rec, ok := done[n.name]
		out = append(out, Status{Name: n.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() int {
	var max struct{ Max int }
	r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&max)
	return max.Max
}
