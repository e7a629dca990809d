package message

import "github.com/whts/whts-go/internal/wire"

// SlaveCfgResp echoes a SlaveCfg with a leading status byte.
type SlaveCfgResp struct {
	Status  uint8
	Entries []SlaveCfgEntry
}

func (m SlaveCfgResp) MessageID() uint8 { return IDSlaveCfgResp }

func (m SlaveCfgResp) Serialize() []byte {
	w := wire.NewWriter(2 + len(m.Entries)*9)
	w.WriteU8(m.Status)
	w.WriteU8(uint8(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU32(e.ID)
		w.WriteU8(e.ConductionNum)
		w.WriteU8(e.ResistanceNum)
		w.WriteU8(e.ClipMode)
		w.WriteU16(e.ClipStatus)
	}
	return w.Bytes()
}

func parseSlaveCfgResp(body []byte) (SlaveCfgResp, error) {
	r := wire.NewReader(body)
	status, ok := r.ReadU8()
	if !ok {
		return SlaveCfgResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	n, ok := r.ReadU8()
	if !ok {
		return SlaveCfgResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	entries := make([]SlaveCfgEntry, 0, n)
	for i := 0; i < int(n); i++ {
		id, ok1 := r.ReadU32()
		cond, ok2 := r.ReadU8()
		res, ok3 := r.ReadU8()
		clipMode, ok4 := r.ReadU8()
		clipStatus, ok5 := r.ReadU16()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
			return SlaveCfgResp{}, &InsufficientBytesError{Expected: 2 + (i+1)*9, Actual: len(body)}
		}
		entries = append(entries, SlaveCfgEntry{ID: id, ConductionNum: cond, ResistanceNum: res, ClipMode: clipMode, ClipStatus: clipStatus})
	}
	return SlaveCfgResp{Status: status, Entries: entries}, nil
}

// ModeCfgResp echoes a ModeCfg with a leading status byte.
type ModeCfgResp struct {
	Status uint8
	Mode   uint8
}

func (m ModeCfgResp) MessageID() uint8  { return IDModeCfgResp }
func (m ModeCfgResp) Serialize() []byte { return []byte{m.Status, m.Mode} }

func parseModeCfgResp(body []byte) (ModeCfgResp, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	mode, ok2 := r.ReadU8()
	if !ok1 || !ok2 {
		return ModeCfgResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	return ModeCfgResp{Status: status, Mode: mode}, nil
}

// MasterRstResp echoes a Backend2Master Rst with a leading status byte.
type MasterRstResp struct {
	Status  uint8
	Entries []BackendRstEntry
}

func (m MasterRstResp) MessageID() uint8 { return IDMasterRstResp }

func (m MasterRstResp) Serialize() []byte {
	w := wire.NewWriter(2 + len(m.Entries)*7)
	w.WriteU8(m.Status)
	w.WriteU8(uint8(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU32(e.ID)
		w.WriteU8(e.Lock)
		w.WriteU16(e.ClipStatus)
	}
	return w.Bytes()
}

func parseMasterRstResp(body []byte) (MasterRstResp, error) {
	r := wire.NewReader(body)
	status, ok := r.ReadU8()
	if !ok {
		return MasterRstResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	n, ok := r.ReadU8()
	if !ok {
		return MasterRstResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	entries := make([]BackendRstEntry, 0, n)
	for i := 0; i < int(n); i++ {
		id, ok1 := r.ReadU32()
		lock, ok2 := r.ReadU8()
		clipStatus, ok3 := r.ReadU16()
		if !ok1 || !ok2 || !ok3 {
			return MasterRstResp{}, &InsufficientBytesError{Expected: 2 + (i+1)*7, Actual: len(body)}
		}
		entries = append(entries, BackendRstEntry{ID: id, Lock: lock, ClipStatus: clipStatus})
	}
	return MasterRstResp{Status: status, Entries: entries}, nil
}

// CtrlResp echoes a Ctrl with a leading status byte.
type CtrlResp struct {
	Status        uint8
	RunningStatus uint8
}

func (m CtrlResp) MessageID() uint8  { return IDCtrlResp }
func (m CtrlResp) Serialize() []byte { return []byte{m.Status, m.RunningStatus} }

func parseCtrlResp(body []byte) (CtrlResp, error) {
	r := wire.NewReader(body)
	status, ok1 := r.ReadU8()
	rs, ok2 := r.ReadU8()
	if !ok1 || !ok2 {
		return CtrlResp{}, &InsufficientBytesError{Expected: 2, Actual: len(body)}
	}
	return CtrlResp{Status: status, RunningStatus: rs}, nil
}

// PingResponse reports a ping session, synthesized at session creation
// (total = requested count, or 0 when the target is not connected;
// success = 0).
type PingResponse struct {
	PingMode      uint8
	Total         uint16
	Success       uint16
	DestinationID uint32
}

func (m PingResponse) MessageID() uint8 { return IDPingResponse }

func (m PingResponse) Serialize() []byte {
	w := wire.NewWriter(9)
	w.WriteU8(m.PingMode)
	w.WriteU16(m.Total)
	w.WriteU16(m.Success)
	w.WriteU32(m.DestinationID)
	return w.Bytes()
}

func parsePingResponse(body []byte) (PingResponse, error) {
	r := wire.NewReader(body)
	mode, ok1 := r.ReadU8()
	total, ok2 := r.ReadU16()
	success, ok3 := r.ReadU16()
	dest, ok4 := r.ReadU32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return PingResponse{}, &InsufficientBytesError{Expected: 9, Actual: len(body)}
	}
	return PingResponse{PingMode: mode, Total: total, Success: success, DestinationID: dest}, nil
}

// DeviceListEntry is one row of a DeviceListResponse.
type DeviceListEntry struct {
	DeviceID uint32
	ShortID  uint8
	Online   uint8
	Major    uint8
	Minor    uint8
	Patch    uint16
}

// DeviceListResponse enumerates the Master's device registry.
type DeviceListResponse struct {
	Entries []DeviceListEntry
}

func (m DeviceListResponse) MessageID() uint8 { return IDDeviceListResponse }

func (m DeviceListResponse) Serialize() []byte {
	w := wire.NewWriter(1 + len(m.Entries)*9)
	w.WriteU8(uint8(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU32(e.DeviceID)
		w.WriteU8(e.ShortID)
		w.WriteU8(e.Online)
		w.WriteU8(e.Major)
		w.WriteU8(e.Minor)
		w.WriteU16(e.Patch)
	}
	return w.Bytes()
}

func parseDeviceListResponse(body []byte) (DeviceListResponse, error) {
	r := wire.NewReader(body)
	n, ok := r.ReadU8()
	if !ok {
		return DeviceListResponse{}, &InsufficientBytesError{Expected: 1, Actual: len(body)}
	}
	entries := make([]DeviceListEntry, 0, n)
	for i := 0; i < int(n); i++ {
		id, ok1 := r.ReadU32()
		shortID, ok2 := r.ReadU8()
		online, ok3 := r.ReadU8()
		major, ok4 := r.ReadU8()
		minor, ok5 := r.ReadU8()
		patch, ok6 := r.ReadU16()
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			return DeviceListResponse{}, &InsufficientBytesError{Expected: 1 + (i+1)*9, Actual: len(body)}
		}
		entries = append(entries, DeviceListEntry{DeviceID: id, ShortID: shortID, Online: online, Major: major, Minor: minor, Patch: patch})
	}
	return DeviceListResponse{Entries: entries}, nil
}

// NewMaster2Backend decodes a Master2Backend message body given its id.
func NewMaster2Backend(id uint8, body []byte) (Message, error) {
	switch id {
	case IDSlaveCfgResp:
		return parseSlaveCfgResp(body)
	case IDModeCfgResp:
		return parseModeCfgResp(body)
	case IDMasterRstResp:
		return parseMasterRstResp(body)
	case IDCtrlResp:
		return parseCtrlResp(body)
	case IDPingResponse:
		return parsePingResponse(body)
	case IDDeviceListResponse:
		return parseDeviceListResponse(body)
	default:
		return nil, &UnknownMessageIDError{PacketID: wire.PacketMasterToBackend, MessageID: id}
	}
}
