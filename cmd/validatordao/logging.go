// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mccoysc/validatordao/internal/config"
)

// setupLogging installs the root logger. The returned function closes the
// log file, if any.
func setupLogging(cfg config.LogConfig) func() {
	var (
		handler slog.Handler
		closer  = func() {}
	)
	switch {
	case cfg.File != "":
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		closer = func() { rotator.Close() }
		if cfg.JSON {
			handler = log.JSONHandler(rotator)
		} else {
			handler = log.NewTerminalHandler(rotator, false)
		}
	case cfg.JSON:
		handler = log.JSONHandler(os.Stderr)
	default:
		usecolor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		output := io.Writer(os.Stderr)
		if usecolor {
			output = colorable.NewColorableStderr()
		}
		handler = log.NewTerminalHandler(output, usecolor)
	}
	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(log.FromLegacyLevel(cfg.Verbosity))
	log.SetDefault(log.NewLogger(glogger))
	return closer
}
