package scripting

import (
	"github.com/sarchlab/caolo/caolang"
	"github.com/sarchlab/caolo/hexgrid"
	"github.com/sarchlab/caolo/ids"
)

// encodeAxial/decodeAxial, encodeWorldPosition/decodeWorldPosition, and
// encodeEntityID/decodeEntityID give foreign functions a fixed-width wire
// format for the structured values they read from and write into VM
// memory, on top of the VM's length-prefixed WriteBlob/ReadBlob pair.

func encodeAxial(a hexgrid.Axial) []byte {
	buf := caolang.EncodeInt32(nil, a.Q)
	buf = caolang.EncodeInt32(buf, a.R)
	return buf
}

func decodeAxial(b []byte) hexgrid.Axial {
	return hexgrid.Axial{
		Q: caolang.DecodeInt32(b, 0),
		R: caolang.DecodeInt32(b, 4),
	}
}

func encodeWorldPosition(p hexgrid.WorldPosition) []byte {
	buf := caolang.EncodeInt32(nil, p.Room.Axial.Q)
	buf = caolang.EncodeInt32(buf, p.Room.Axial.R)
	buf = caolang.EncodeInt32(buf, p.Pos.Q)
	buf = caolang.EncodeInt32(buf, p.Pos.R)
	return buf
}

func decodeWorldPosition(b []byte) hexgrid.WorldPosition {
	return hexgrid.WorldPosition{
		Room: hexgrid.NewRoom(hexgrid.Axial{
			Q: caolang.DecodeInt32(b, 0),
			R: caolang.DecodeInt32(b, 4),
		}),
		Pos: hexgrid.Axial{
			Q: caolang.DecodeInt32(b, 8),
			R: caolang.DecodeInt32(b, 12),
		},
	}
}

func encodeEntityID(id ids.EntityId) []byte {
	return caolang.EncodeInt32(nil, int32(id))
}

func decodeEntityID(b []byte) ids.EntityId {
	return ids.EntityId(caolang.DecodeInt32(b, 0))
}

func int32ToScalar(v int32) caolang.Scalar { return caolang.NewInteger(v) }
