// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Ctx is a convenience map form of a logger's key/value context.
type Ctx map[string]interface{}

// toArray flattens a Ctx into the alternating key/value slice the
// write path expects.
func (c Ctx) toArray() []interface{} {
	out := make([]interface{}, 0, len(c)*2)
	for k, v := range c {
		out = append(out, k, v)
	}
	return out
}

// normalize pads an odd-length key/value slice with a trailing nil so
// every key always has a paired value.
func normalize(ctx []interface{}) []interface{} {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil)
	}
	return ctx
}

var lvlToLogrus = map[Lvl]logrus.Level{
	LvlCrit:  logrus.FatalLevel,
	LvlFatal: logrus.FatalLevel,
	LvlError: logrus.ErrorLevel,
	LvlWarn:  logrus.WarnLevel,
	LvlInfo:  logrus.InfoLevel,
	LvlDebug: logrus.DebugLevel,
	LvlTrace: logrus.TraceLevel,
}

// logger implements Logger over the shared logrus instance (terminal),
// carrying its own fixed key/value context that every call appends to.
type logger struct {
	ctx     []interface{}
	mapPool sync.Pool
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := make([]interface{}, 0, len(l.ctx)+len(ctx))
	child = append(child, l.ctx...)
	child = append(child, normalize(ctx)...)
	return &logger{ctx: child, mapPool: sync.Pool{
		New: func() any { return map[string]interface{}{} },
	}}
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, _ int) {
	full := normalize(append(append([]interface{}{}, l.ctx...), ctx...))
	fields := l.mapPool.Get().(map[string]interface{})
	defer func() {
		for k := range fields {
			delete(fields, k)
		}
		l.mapPool.Put(fields)
	}()
	for i := 0; i+1 < len(full); i += 2 {
		key, ok := full[i].(string)
		if !ok {
			continue
		}
		fields[key] = full[i+1]
	}
	entry := terminal.WithFields(fields)
	level, ok := lvlToLogrus[lvl]
	if !ok {
		level = logrus.InfoLevel
	}
	entry.Log(level, msg)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, skipLevel) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, skipLevel) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, skipLevel) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, skipLevel) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, skipLevel) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(msg, LvlCrit, ctx, skipLevel) }
