// Copyright 2025 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

const configEntryPoint = "configure"

// Load executes the Starlark config file fname and merges the
// returned overrides into cfg. The file must define
//
//	def configure(ctx):
//	    return {
//	        "keep_variant_dir": False,
//	        "tools": {
//	            "cscope": {
//	                "command": ctx.env.get("CSCOPE", "cscope"),
//	                "flags": ["-b", "-q", "-k"],
//	            },
//	        },
//	    }
//
// ctx.env.get(name, default) reads process environment variables.
// Only tools known to cfg may be overridden; unknown keys are
// configuration errors, caught here rather than at invocation time.
func Load(fname string, cfg *Config) error {
	data, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	thread := &starlark.Thread{
		Name: "config",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
	}
	opts := &syntax.FileOptions{
		Set:       true,
		Recursion: true,
	}
	globals, err := starlark.ExecFileOptions(opts, thread, fname, data, starlark.StringDict{})
	if err != nil {
		return starErr(fmt.Sprintf("exec %s", fname), err)
	}
	v, ok := globals[configEntryPoint]
	if !ok {
		return fmt.Errorf("%s is not defined in %s", configEntryPoint, fname)
	}
	fun, ok := v.(starlark.Callable)
	if !ok {
		return fmt.Errorf("%s %s is not callable in %s", configEntryPoint, v.Type(), fname)
	}
	sctx := starlarkstruct.FromStringDict(starlark.String("ctx"), map[string]starlark.Value{
		"env": envModule(),
	})
	ret, err := starlark.Call(thread, fun, []starlark.Value{sctx}, nil)
	if err != nil {
		return starErr(fmt.Sprintf("run %s in %s", configEntryPoint, fname), err)
	}
	d, ok := ret.(*starlark.Dict)
	if !ok {
		return fmt.Errorf("%s returned %s, want dict", configEntryPoint, ret.Type())
	}
	if err := mergeConfig(cfg, d); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	cfg.ConfigFile = fname
	return nil
}

func starErr(op string, err error) error {
	var eerr *starlark.EvalError
	if errors.As(err, &eerr) {
		log.Warnf("%s: stacktrace:\n%s", op, eerr.Backtrace())
	}
	return fmt.Errorf("%s: %w", op, err)
}

func envModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "env",
		Members: starlark.StringDict{
			"get": starlark.NewBuiltin("env.get", envGet),
		},
	}
}

func envGet(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, dflt string
	if err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "default?", &dflt); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(name); ok {
		return starlark.String(v), nil
	}
	return starlark.String(dflt), nil
}

func mergeConfig(cfg *Config, d *starlark.Dict) error {
	for _, kv := range d.Items() {
		key, ok := starlark.AsString(kv[0])
		if !ok {
			return fmt.Errorf("config key: got %s, want string", kv[0].Type())
		}
		v := kv[1]
		switch key {
		case "keep_variant_dir":
			b, err := boolValue(key, v)
			if err != nil {
				return err
			}
			cfg.KeepVariant = b
		case "deps_dir":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			cfg.DepsDir = s
		case "deps_suffix":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			cfg.DepsSuffix = s
		case "tools":
			td, ok := v.(*starlark.Dict)
			if !ok {
				return typeErr(key, v, "dict")
			}
			if err := mergeTools(cfg, td); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	return nil
}

func mergeTools(cfg *Config, d *starlark.Dict) error {
	for _, kv := range d.Items() {
		name, ok := starlark.AsString(kv[0])
		if !ok {
			return fmt.Errorf("tools key: got %s, want string", kv[0].Type())
		}
		p, ok := cfg.Tools[name]
		if !ok {
			return fmt.Errorf("tools[%q]: unknown tool", name)
		}
		pd, ok := kv[1].(*starlark.Dict)
		if !ok {
			return typeErr(fmt.Sprintf("tools[%q]", name), kv[1], "dict")
		}
		if err := mergeProfile(p, pd); err != nil {
			return fmt.Errorf("tools[%q].%w", name, err)
		}
	}
	return nil
}

func mergeProfile(p *Profile, d *starlark.Dict) error {
	for _, kv := range d.Items() {
		key, ok := starlark.AsString(kv[0])
		if !ok {
			return fmt.Errorf("key: got %s, want string", kv[0].Type())
		}
		v := kv[1]
		var err error
		switch key {
		case "command":
			p.Command, err = stringValue(key, v)
		case "flags":
			p.Flags, err = stringList(key, v)
		case "suffixes":
			p.Suffixes, err = stringList(key, v)
		case "transport":
			var s string
			s, err = stringValue(key, v)
			if err == nil {
				p.Transport, err = ParseTransport(s)
			}
		case "include_flag":
			p.IncludeFlag, err = stringValue(key, v)
		case "includes":
			p.Includes, err = stringList(key, v)
		case "define_flag":
			p.DefineFlag, err = stringValue(key, v)
		case "defines":
			p.Defines, err = stringList(key, v)
		case "symbol_flag":
			p.SymbolFlag, err = stringValue(key, v)
		case "symbols":
			p.Symbols, err = stringList(key, v)
		case "config_flag":
			p.ConfigFlag, err = stringValue(key, v)
		case "config_file":
			p.ConfigFile, err = stringValue(key, v)
		case "output_flag":
			p.OutputFlag, err = stringValue(key, v)
		case "output":
			p.Output, err = stringValue(key, v)
		case "output_dir_arg":
			p.OutputDirArg, err = boolValue(key, v)
		case "side_outputs":
			p.SideOutputs, err = stringList(key, v)
		case "stdin_flags":
			p.StdinFlags, err = stringList(key, v)
		case "formats":
			p.Formats, err = formatsValue(key, v)
		case "namefile":
			p.Namefile, err = stringValue(key, v)
		case "namefile_flags":
			p.NamefileFlags, err = stringList(key, v)
		case "guard_file":
			p.GuardFile, err = stringValue(key, v)
		case "scan_roots":
			p.ScanRoots, err = stringList(key, v)
		case "prefer_preprocessed":
			p.PreferPreprocessed, err = boolValue(key, v)
		case "style":
			p.Style, err = stringValue(key, v)
		case "absolute_files":
			p.AbsoluteFiles, err = boolValue(key, v)
		default:
			return fmt.Errorf("%s: unknown profile key", key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func typeErr(key string, v starlark.Value, want string) error {
	return fmt.Errorf("%s: got %s, want %s", key, v.Type(), want)
}

func stringValue(key string, v starlark.Value) (string, error) {
	s, ok := starlark.AsString(v)
	if !ok {
		return "", typeErr(key, v, "string")
	}
	return s, nil
}

func boolValue(key string, v starlark.Value) (bool, error) {
	b, ok := v.(starlark.Bool)
	if !ok {
		return false, typeErr(key, v, "bool")
	}
	return bool(b), nil
}

func stringList(key string, v starlark.Value) ([]string, error) {
	l, ok := v.(*starlark.List)
	if !ok {
		return nil, typeErr(key, v, "list of string")
	}
	var ss []string
	for i := 0; i < l.Len(); i++ {
		s, ok := starlark.AsString(l.Index(i))
		if !ok {
			return nil, fmt.Errorf("%s[%d]: got %s, want string", key, i, l.Index(i).Type())
		}
		ss = append(ss, s)
	}
	return ss, nil
}

func formatsValue(key string, v starlark.Value) (map[string][]string, error) {
	d, ok := v.(*starlark.Dict)
	if !ok {
		return nil, typeErr(key, v, "dict of string to list of string")
	}
	m := make(map[string][]string, d.Len())
	for _, kv := range d.Items() {
		k, ok := starlark.AsString(kv[0])
		if !ok {
			return nil, fmt.Errorf("%s key: got %s, want string", key, kv[0].Type())
		}
		fl, err := stringList(fmt.Sprintf("%s[%q]", key, k), kv[1])
		if err != nil {
			return nil, err
		}
		m[k] = fl
	}
	return m, nil
}
