package message

// DeviceStatus is the u16 bitfield carried in every Slave2Backend frame
// (§3). Bit 0 is the LSB; remaining bits are reserved and always
// transmitted as zero.
type DeviceStatus struct {
	ColorSensor                bool
	SleeveLimit                bool
	ElectromagnetUnlockButton  bool
	BatteryLowAlarm            bool
	PressureSensor             bool
	ElectromagneticLock1       bool
	ElectromagneticLock2       bool
	Accessory1                 bool
	Accessory2                 bool
}

func bit(b bool, pos uint) uint16 {
	if b {
		return 1 << pos
	}
	return 0
}

// ToUint16 packs the flags into the wire bitfield.
func (s DeviceStatus) ToUint16() uint16 {
	return bit(s.ColorSensor, 0) |
		bit(s.SleeveLimit, 1) |
		bit(s.ElectromagnetUnlockButton, 2) |
		bit(s.BatteryLowAlarm, 3) |
		bit(s.PressureSensor, 4) |
		bit(s.ElectromagneticLock1, 5) |
		bit(s.ElectromagneticLock2, 6) |
		bit(s.Accessory1, 7) |
		bit(s.Accessory2, 8)
}

// DeviceStatusFromUint16 unpacks the wire bitfield, ignoring reserved bits.
func DeviceStatusFromUint16(v uint16) DeviceStatus {
	return DeviceStatus{
		ColorSensor:               v&(1<<0) != 0,
		SleeveLimit:               v&(1<<1) != 0,
		ElectromagnetUnlockButton: v&(1<<2) != 0,
		BatteryLowAlarm:           v&(1<<3) != 0,
		PressureSensor:            v&(1<<4) != 0,
		ElectromagneticLock1:      v&(1<<5) != 0,
		ElectromagneticLock2:      v&(1<<6) != 0,
		Accessory1:                v&(1<<7) != 0,
		Accessory2:                v&(1<<8) != 0,
	}
}
