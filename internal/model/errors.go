package model

import "errors"

var (
	ErrDuplicateTable        = errors.New("duplicate table name")
	ErrUnknownTable          = errors.New("unknown table")
	ErrUnknownColumn         = errors.New("unknown column")
	ErrDuplicateColumn       = errors.New("duplicate column name")
	ErrDuplicateFK           = errors.New("duplicate foreign key")
	ErrColumnIsFKTarget      = errors.New("column is referenced by foreign keys")
	ErrNoPKOnReferencedTable = errors.New("referenced table has no primary key")
	ErrNoPK                  = errors.New("table has no primary key")
)
