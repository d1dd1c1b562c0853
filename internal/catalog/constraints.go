package catalog

import (
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/tuannm99/mydb/internal/record"
	"github.com/tuannm99/mydb/internal/sqlerr"
)

// CreateTable validates def against itself and the existing catalog, then
// persists it and bumps the reference count of every referenced table.
// Nothing is written until validation passes; a failure while writing
// undoes every write made so far.
func (c *Catalog) CreateTable(def TableDef) (*TableSchema, error) {
	name := strings.ToLower(def.Name)

	exists, err := c.Exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, sqlerr.TableExistence()
	}

	s := &TableSchema{Name: name}
	if err := buildColumns(s, def.Columns); err != nil {
		return nil, err
	}
	if err := buildPrimaryKey(s, def.PrimaryKeys); err != nil {
		return nil, err
	}
	for _, fd := range def.ForeignKeys {
		fk, err := c.resolveForeignKey(s, fd)
		if err != nil {
			return nil, err
		}
		s.ForeignKeys = append(s.ForeignKeys, fk)
	}
	s.finalizeNullability()

	if err := c.commitCreate(s); err != nil {
		return nil, err
	}
	c.log.Info("catalog: table created",
		zap.String("table", name),
		zap.Int("columns", len(s.Columns)),
		zap.Int("foreign_keys", len(s.ForeignKeys)))
	return s, nil
}

func buildColumns(s *TableSchema, defs []ColumnDef) error {
	for _, d := range defs {
		col := strings.ToLower(d.Name)
		if d.Type.Kind == record.KindChar && d.Type.Length < 1 {
			return sqlerr.CharLength()
		}
		if s.HasColumn(col) {
			return sqlerr.DuplicateColumnDef()
		}
		s.Columns = append(s.Columns, record.Column{Name: col, Type: d.Type, Nullable: true})
		if d.NotNull {
			s.NotNull = append(s.NotNull, col)
		}
	}
	return nil
}

func buildPrimaryKey(s *TableSchema, clauses [][]string) error {
	for i, clause := range clauses {
		if i > 0 {
			return sqlerr.DuplicatePrimaryKeyDef()
		}
		for _, raw := range clause {
			col := strings.ToLower(raw)
			if !s.HasColumn(col) {
				return sqlerr.NonExistingColumnDef(col)
			}
			if slices.Contains(s.PrimaryKey, col) {
				return sqlerr.DuplicatePrimaryKeyDef()
			}
			s.PrimaryKey = append(s.PrimaryKey, col)
		}
	}
	return nil
}

func (c *Catalog) resolveForeignKey(s *TableSchema, fd ForeignKeyDef) (ForeignKey, error) {
	fk := ForeignKey{RefTable: strings.ToLower(fd.RefTable)}

	for _, raw := range fd.Columns {
		col := strings.ToLower(raw)
		if !s.HasColumn(col) {
			return ForeignKey{}, sqlerr.NonExistingColumnDef(col)
		}
		fk.Columns = append(fk.Columns, col)
	}

	if fk.RefTable == s.Name {
		return ForeignKey{}, sqlerr.ReferenceSelf()
	}

	ref, err := c.Load(fk.RefTable)
	if errors.Is(err, ErrTableNotFound) {
		return ForeignKey{}, sqlerr.ReferenceTableExistence()
	}
	if err != nil {
		return ForeignKey{}, err
	}

	for _, raw := range fd.RefColumns {
		col := strings.ToLower(raw)
		if !ref.HasColumn(col) {
			return ForeignKey{}, sqlerr.ReferenceColumnExistence()
		}
		fk.RefColumns = append(fk.RefColumns, col)
	}

	// Each referenced column consumes one primary key column; the key must
	// be used up exactly and every referenced column needs a local partner.
	remaining := slices.Clone(ref.PrimaryKey)
	for _, col := range fk.RefColumns {
		i := slices.Index(remaining, col)
		if i < 0 {
			return ForeignKey{}, sqlerr.ReferenceNonPrimaryKey()
		}
		remaining = slices.Delete(remaining, i, i+1)
	}
	if len(remaining) > 0 || len(fk.Columns) < len(fk.RefColumns) {
		return ForeignKey{}, sqlerr.ReferenceNonPrimaryKey()
	}

	// Columns pair up positionally; a local column left over has nothing
	// to reference.
	if len(fk.Columns) != len(fk.RefColumns) {
		return ForeignKey{}, sqlerr.ReferenceType()
	}
	for i := range fk.Columns {
		local, _ := s.Column(fk.Columns[i])
		remote, _ := ref.Column(fk.RefColumns[i])
		if !local.Type.Compatible(remote.Type) {
			return ForeignKey{}, sqlerr.ReferenceType()
		}
	}
	return fk, nil
}

// commitCreate applies the validated schema. Reference counts are bumped
// first, then the schema is written; on failure each step is reverted in
// reverse order.
func (c *Catalog) commitCreate(s *TableSchema) error {
	var undo []func() error
	rollback := func(cause error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](); err != nil {
				c.log.Warn("catalog: rollback step failed",
					zap.String("table", s.Name), zap.Error(err))
			}
		}
		c.log.Warn("catalog: create table rolled back",
			zap.String("table", s.Name), zap.Error(cause))
		return cause
	}

	if err := c.removeOrphanRows(s.Name); err != nil {
		return err
	}

	for _, ref := range s.ReferencedTables() {
		if err := c.adjustReferenceCount(ref, +1); err != nil {
			return rollback(err)
		}
		undo = append(undo, func() error { return c.adjustReferenceCount(ref, -1) })
	}

	undo = append(undo, func() error { return c.opener.Remove(SchemaStoreName(s.Name)) })
	if err := c.save(s); err != nil {
		return rollback(err)
	}
	return nil
}

// DropTable removes a table that no other table references, releases its
// own references and deletes both its schema and row stores.
func (c *Catalog) DropTable(table string) error {
	name := strings.ToLower(table)

	s, err := c.Load(name)
	if errors.Is(err, ErrTableNotFound) {
		return sqlerr.NoSuchTable()
	}
	if err != nil {
		return err
	}
	if s.ReferenceCount != 0 {
		return sqlerr.DropReferencedTable(name)
	}

	var undo []func() error
	rollback := func(cause error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			if err := undo[i](); err != nil {
				c.log.Warn("catalog: rollback step failed",
					zap.String("table", name), zap.Error(err))
			}
		}
		c.log.Warn("catalog: drop table rolled back",
			zap.String("table", name), zap.Error(cause))
		return cause
	}

	for _, ref := range s.ReferencedTables() {
		if err := c.adjustReferenceCount(ref, -1); err != nil {
			return rollback(err)
		}
		undo = append(undo, func() error { return c.adjustReferenceCount(ref, +1) })
	}

	// The schema store is the table's existence; once it is gone the drop
	// has happened.
	if err := c.opener.Remove(SchemaStoreName(name)); err != nil {
		return rollback(err)
	}
	if err := c.opener.Remove(RowStoreName(name)); err != nil {
		c.log.Warn("catalog: row store left behind",
			zap.String("table", name), zap.Error(err))
		return err
	}
	c.log.Info("catalog: table dropped", zap.String("table", name))
	return nil
}
