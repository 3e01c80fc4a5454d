package protocol

// PacketID identifies what a packet carries.
type PacketID uint8

const (
	PacketKeyExchange PacketID = 1
	PacketData        PacketID = 2
	PacketClose       PacketID = 3
)

func (id PacketID) String() string {
	switch id {
	case PacketKeyExchange:
		return "KEY_EXCHANGE"
	case PacketData:
		return "DATA"
	case PacketClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// Packet is the unit exchanged on an encrypted connection.
type Packet struct {
	ID      PacketID
	Payload []byte
}
