package scripting

import (
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/caolang/vm"
)

// consoleLog reads the length-prefixed string a StringLiteral (or
// make_point-style WriteBlob) wrote at ptr and stashes it as the script's
// LogIntent. Only the most recent call in a run survives, matching the
// reference's single log-slot-per-tick behaviour.
func consoleLog(vmach *vm.VM[*Aux], ptr int32) (int, error) {
	aux := vmach.Aux()
	blob, ok := vmach.ReadBlob(ptr)
	if !ok {
		return 0, nil
	}
	aux.Intents.Log = &LogIntent{
		Entity:  aux.EntityID,
		Payload: string(blob),
		Tick:    aux.World.Tick(),
	}
	if aux.Logger != nil {
		aux.Logger.Debug("script log", "entity", aux.EntityID, "payload", string(blob))
	}
	return 0, nil
}

// logScalar formats a bare scalar (no pointer indirection) as the log
// payload, for scripts logging a number without building a string first.
func logScalar(vmach *vm.VM[*Aux], s caolang.Scalar) (int, error) {
	aux := vmach.Aux()
	var payload string
	switch s.Kind {
	case caolang.KindInteger, caolang.KindPointer:
		payload = formatInt(s.Int)
	case caolang.KindFloating:
		payload = formatFloat(s.Float)
	}
	aux.Intents.Log = &LogIntent{
		Entity:  aux.EntityID,
		Payload: payload,
		Tick:    aux.World.Tick(),
	}
	return 0, nil
}

func formatInt(v int32) string {
	neg := v < 0
	if neg {
		v = -v
	}
	if v == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func formatFloat(v float32) string {
	whole := int32(v)
	frac := v - float32(whole)
	if frac < 0 {
		frac = -frac
	}
	milli := int32(frac * 1000)
	return formatInt(whole) + "." + padMilli(milli)
}

func padMilli(v int32) string {
	s := formatInt(v)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
