// Package sqlite provides sqlite-specific error checking. This is
// purposefully broken out from the rest of the errors package so that
// go-sqlite3's cgo dependency stays isolated to the builds that need it.
package sqlite

import (
	"strings"

	"github.com/mattn/go-sqlite3"

	deployerrors "github.com/avflor/mlflow-deploy/pkg/deploy/errors"
)

// sqlite converts sqlite3 error codes to pipeline error codes. sqlite reports
// a duplicate table as a plain SQLITE_ERROR, so the message is consulted for
// that one case.
func sqlite(err error) deployerrors.Code {
	serr, ok := err.(sqlite3.Error)
	if !ok {
		return deployerrors.CodeUnknown
	}

	switch serr.Code {
	case sqlite3.ErrConstraint:
		if serr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return deployerrors.CodeAlreadyExists
		}
	case sqlite3.ErrError:
		if strings.Contains(serr.Error(), "already exists") {
			return deployerrors.CodeAlreadyExists
		}
	}
	return deployerrors.CodeUnknown
}

func init() {
	deployerrors.RegisterErrorSpace(sqlite)
}
