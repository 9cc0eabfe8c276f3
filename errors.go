/*
 * errors.go, part of moldynplot.
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package moldynplot

import (
	"errors"
	"fmt"
	"strings"
)

//ErrorKind classifies the errors returned by moldynplot and its subpackages.
type ErrorKind int

const (
	//The dataset specification can not be resolved, or is malformed.
	ConfigurationError ErrorKind = iota + 1
	//A column required for a derived quantity is absent.
	MissingColumnError
	//A parameter has an invalid value or type.
	InvalidArgumentError
	//A referenced file or address does not exist.
	SourceNotFoundError
	//Two tables lack the quantity needed to combine them.
	IncompatibleDatasetsError
)

func (K ErrorKind) String() string {
	switch K {
	case ConfigurationError:
		return "configuration error"
	case MissingColumnError:
		return "missing column"
	case InvalidArgumentError:
		return "invalid argument"
	case SourceNotFoundError:
		return "source not found"
	case IncompatibleDatasetsError:
		return "incompatible datasets"
	}
	return "unknown error"
}

//Decorator is implemented by the errors of this library.
//Decorate allows adding the name of each function the error passes through,
//without wrapping or changing its type. Decorate with an empty string just returns the
//current trail.
type Decorator interface {
	Error() string
	Decorate(string) []string
}

//Error is the error type returned by all the packages of moldynplot.
type Error struct {
	kind     ErrorKind
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	cause    error
}

//Sentinels to be used with errors.Is. Only the kind is compared.
var (
	ErrConfiguration        = &Error{kind: ConfigurationError}
	ErrMissingColumn        = &Error{kind: MissingColumnError}
	ErrInvalidArgument      = &Error{kind: InvalidArgumentError}
	ErrSourceNotFound       = &Error{kind: SourceNotFoundError}
	ErrIncompatibleDatasets = &Error{kind: IncompatibleDatasetsError}
)

//NewError returns a new *Error of the given kind. The caller, if not empty,
//starts the decoration trail.
func NewError(kind ErrorKind, caller string, format string, args ...interface{}) *Error {
	E := &Error{kind: kind, message: fmt.Sprintf(format, args...)}
	if caller != "" {
		E.deco = []string{caller}
	}
	return E
}

//WrapError is like NewError, but it keeps cause as the underlying error.
func WrapError(kind ErrorKind, caller string, cause error, format string, args ...interface{}) *Error {
	E := NewError(kind, caller, format, args...)
	E.cause = cause
	return E
}

//WithFile sets the name of the file associated with the error and returns the receiver.
func (E *Error) WithFile(name string) *Error {
	E.filename = name
	return E
}

func (E *Error) Error() string {
	msg := E.kind.String()
	if E.message != "" {
		msg += ": " + E.message
	}
	if E.filename != "" {
		msg = fmt.Sprintf("file %s: %s", E.filename, msg)
	}
	if len(E.deco) > 0 {
		msg = strings.Join(E.deco, ": ") + ": " + msg
	}
	if E.cause != nil {
		msg += ": " + E.cause.Error()
	}
	return msg
}

//Decorate adds new information to the error
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append([]string{deco}, E.deco...)
	}
	return E.deco
}

//Clone returns a copy of the error with its own decoration trail, so it can be
//decorated without changing E. Causes that are *Error are cloned too.
func (E *Error) Clone() *Error {
	C := *E
	C.deco = append([]string(nil), E.deco...)
	if c, ok := E.cause.(*Error); ok {
		C.cause = c.Clone()
	}
	return &C
}

//CloneError returns a clone of err if it is an *Error, and err itself otherwise.
func CloneError(err error) error {
	if E, ok := err.(*Error); ok && E != nil {
		return E.Clone()
	}
	return err
}

//Kind returns the kind of the error.
func (E *Error) Kind() ErrorKind { return E.kind }

//FileName returns the file associated with the error, or an empty string.
func (E *Error) FileName() string { return E.filename }

func (E *Error) Unwrap() error { return E.cause }

//Is reports whether target is an *Error of the same kind. It makes
//errors.Is(err, ErrMissingColumn) and friends work.
func (E *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == E.kind
}

//IsKind returns true if err is, or wraps, an *Error of kind k.
func IsKind(err error, k ErrorKind) bool {
	var E *Error
	if errors.As(err, &E) {
		return E.kind == k
	}
	return false
}

//ErrDecorate adds caller to the trail of err, if err is a Decorator,
//and returns err.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var d Decorator
	if errors.As(err, &d) {
		d.Decorate(caller)
	}
	return err
}
