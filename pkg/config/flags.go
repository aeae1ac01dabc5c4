// Copyright 2020 The gVisor Authors.
// Copyright 2026 The redk Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"flag"
	"fmt"
	"reflect"
)

// RegisterFlags registers flags used to override Config. Defaults are those of
// Default.
func RegisterFlags(flagSet *flag.FlagSet) {
	d := Default()
	flagSet.String("log-level", d.Log.Level, "log level: warning, info (default) or debug.")
	flagSet.String("log-format", d.Log.Format, "log format: text (default) or json.")
	flagSet.Uint("timer-hz", uint(d.Kernel.TimerHz), "timer interrupt rate in Hz; must divide 1000.")
	flagSet.Uint("user-stack-size", uint(d.Kernel.UserStackSize), "size in bytes of the user program stack.")
	flagSet.String("executable", d.Kernel.Executable, "program to launch; overrides the boot command line.")
	flagSet.Bool("trace-syscalls", d.Kernel.TraceSyscalls, "log every syscall at debug level.")
	flagSet.Bool("startup-melody", d.Kernel.StartupMelody, "play the startup melody.")
}

// ApplyFlags overrides c with every flag explicitly set in flagSet, then
// validates the result.
func (c *Config) ApplyFlags(flagSet *flag.FlagSet) error {
	var err error
	flagSet.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		field, ok := c.field(fl.Name)
		if !ok {
			return
		}
		getter, ok := fl.Value.(flag.Getter)
		if !ok {
			err = fmt.Errorf("flag %q has no value getter", fl.Name)
			return
		}
		v, cerr := convert(reflect.ValueOf(getter.Get()), field.Type())
		if cerr != nil {
			err = fmt.Errorf("flag %q: %w", fl.Name, cerr)
			return
		}
		field.Set(v)
	})
	if err != nil {
		return err
	}
	return c.Validate()
}

// convert converts v to type t, failing if the value does not fit.
func convert(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64 && reflect.Zero(t).OverflowUint(v.Uint()) {
			return reflect.Value{}, fmt.Errorf("value %d out of range for %v", v.Uint(), t)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64 && reflect.Zero(t).OverflowInt(v.Int()) {
			return reflect.Value{}, fmt.Errorf("value %d out of range for %v", v.Int(), t)
		}
	}
	if !v.CanConvert(t) {
		return reflect.Value{}, fmt.Errorf("cannot convert %v to %v", v.Type(), t)
	}
	return v.Convert(t), nil
}

// Override sets the field bound to flag name from value, parsed the way the
// command line would parse it.
func (c *Config) Override(name, value string) error {
	flagSet := flag.NewFlagSet("tmp", flag.ContinueOnError)
	RegisterFlags(flagSet)
	if flagSet.Lookup(name) == nil {
		return fmt.Errorf("unknown flag %q", name)
	}
	if err := flagSet.Set(name, value); err != nil {
		return fmt.Errorf("error setting flag %s=%q: %w", name, value, err)
	}
	return c.ApplyFlags(flagSet)
}

// ToFlags returns the flags that reproduce c, omitting defaults.
func (c *Config) ToFlags() []string {
	flagSet := flag.NewFlagSet("tmp", flag.ContinueOnError)
	RegisterFlags(flagSet)

	var rv []string
	c.visitFields(func(name string, v reflect.Value) {
		fl := flagSet.Lookup(name)
		if fl == nil {
			panic(fmt.Sprintf("Flag %q not found", name))
		}
		val := fmt.Sprint(v.Interface())
		if val == fl.DefValue {
			return
		}
		rv = append(rv, fmt.Sprintf("--%s=%s", name, val))
	})
	return rv
}

// field returns the field tagged with flag name.
func (c *Config) field(name string) (reflect.Value, bool) {
	var (
		found reflect.Value
		ok    bool
	)
	c.visitFields(func(n string, v reflect.Value) {
		if n == name {
			found, ok = v, true
		}
	})
	return found, ok
}

// visitFields calls fn for every flag-tagged field of c, one level of
// sections deep, in declaration order.
func (c *Config) visitFields(fn func(name string, v reflect.Value)) {
	obj := reflect.ValueOf(c).Elem()
	for i := 0; i < obj.NumField(); i++ {
		section := obj.Field(i)
		st := section.Type()
		for j := 0; j < st.NumField(); j++ {
			name, ok := st.Field(j).Tag.Lookup("flag")
			if !ok {
				// No flag set for this field.
				continue
			}
			fn(name, section.Field(j))
		}
	}
}
