package message

// Message-ID spaces are per packet direction (§4.3, §9): decoding a
// message id without knowing the PacketID is meaningless. Each block below
// is its own namespace.

// Master2Slave message ids.
const (
	IDSync               uint8 = 0x00
	IDConductionCfg      uint8 = 0x10
	IDResistanceCfg      uint8 = 0x11
	IDClipCfg            uint8 = 0x12
	IDReadConductionData uint8 = 0x20
	IDReadResistanceData uint8 = 0x21
	IDReadClipData       uint8 = 0x22
	IDRst                uint8 = 0x30
	IDPingReq            uint8 = 0x40
	IDShortIDAssign      uint8 = 0x50
)

// Slave2Master message ids.
const (
	IDConductionCfgResp uint8 = 0x10
	IDResistanceCfgResp uint8 = 0x11
	IDClipCfgResp       uint8 = 0x22
	IDRstResp           uint8 = 0x30
	IDPingRsp           uint8 = 0x41
	IDAnnounce          uint8 = 0x50
	IDShortIDConfirm    uint8 = 0x51
)

// Backend2Master message ids.
const (
	IDSlaveCfg      uint8 = 0x00
	IDModeCfg       uint8 = 0x01
	IDBackendRst    uint8 = 0x02
	IDCtrl          uint8 = 0x03
	IDPingCtrl      uint8 = 0x10
	IDDeviceListReq uint8 = 0x11
)

// Master2Backend message ids.
const (
	IDSlaveCfgResp       uint8 = 0x00
	IDModeCfgResp        uint8 = 0x01
	IDMasterRstResp      uint8 = 0x02
	IDCtrlResp           uint8 = 0x03
	IDPingResponse       uint8 = 0x04
	IDDeviceListResponse uint8 = 0x05
)

// Slave2Backend message ids.
const (
	IDConductionData uint8 = 0x00
	IDResistanceData uint8 = 0x01
	IDClipData       uint8 = 0x02
)

// Mode values used by Sync/ModeCfg.
const (
	ModeConduction uint8 = 0
	ModeResistance uint8 = 1
	ModeClip       uint8 = 2
)

// RunningStatus values used by Ctrl.
const (
	RunningStop  uint8 = 0
	RunningRun   uint8 = 1
	RunningReset uint8 = 2
)

// Message is implemented by every typed record in the catalog. Serialize
// produces the message body only (the routing prefix — message id plus
// destination/slave id and, for Slave2Backend, device status — is added by
// the per-direction pack functions in packet.go).
type Message interface {
	MessageID() uint8
	Serialize() []byte
}
