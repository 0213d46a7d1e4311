package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	xerrors "github.com/yungbote/claimintake-backend/internal/pkg/errors"
	"github.com/yungbote/claimintake-backend/internal/pkg/logger"
	"github.com/yungbote/claimintake-backend/internal/records"
)

func testLogger(t interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

type createCall struct {
	table  string
	fields records.Fields
}

type updateCall struct {
	table  string
	id     string
	fields records.Fields
}

// fakeStore stubs lookups by table + filter formula and records writes.
type fakeStore struct {
	findOne    map[string]records.Record
	findAll    map[string][]records.Record
	failOn     map[string]error
	creates    []createCall
	updates    []updateCall
	nextID     int
	writeErr   error
	lastFilter string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		findOne: map[string]records.Record{},
		findAll: map[string][]records.Record{},
		failOn:  map[string]error{},
	}
}

func stubKey(table string, filter records.Filter) string {
	return table + "|" + filter.Formula()
}

func (f *fakeStore) FindOne(ctx context.Context, table string, filter records.Filter) (records.Record, error) {
	key := stubKey(table, filter)
	f.lastFilter = filter.Formula()
	if err, ok := f.failOn[key]; ok {
		return records.Record{}, err
	}
	if rec, ok := f.findOne[key]; ok {
		return rec, nil
	}
	return records.Record{}, fmt.Errorf("find one %s: %w", table, xerrors.ErrNotFound)
}

func (f *fakeStore) FindAll(ctx context.Context, table string, filter records.Filter) ([]records.Record, error) {
	key := stubKey(table, filter)
	f.lastFilter = filter.Formula()
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	return f.findAll[key], nil
}

func (f *fakeStore) Create(ctx context.Context, table string, fields records.Fields) (records.Record, error) {
	if f.writeErr != nil {
		return records.Record{}, f.writeErr
	}
	f.creates = append(f.creates, createCall{table: table, fields: fields})
	f.nextID++
	return records.NewRecord(fmt.Sprintf("rec%014d", f.nextID), map[string]any(fields)), nil
}

func (f *fakeStore) Update(ctx context.Context, table, id string, fields records.Fields) (records.Record, error) {
	if f.writeErr != nil {
		return records.Record{}, f.writeErr
	}
	f.updates = append(f.updates, updateCall{table: table, id: id, fields: fields})
	return records.NewRecord(id, map[string]any(fields)), nil
}

func (f *fakeStore) GetOrCreateByName(ctx context.Context, table, nameField, name string) (records.Record, bool, error) {
	rec, err := f.FindOne(ctx, table, records.EqFold(nameField, strings.TrimSpace(name)))
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return records.Record{}, false, err
	}
	created, err := f.Create(ctx, table, records.Fields{nameField: strings.TrimSpace(name)})
	if err != nil {
		return records.Record{}, false, err
	}
	return created, true, nil
}
