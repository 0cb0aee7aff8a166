package accel

// LSM303DLH/DLM accelerometer register map.
const (
	regCtrl1         = 0x20
	regCtrl2         = 0x21
	regCtrl3         = 0x22
	regCtrl4         = 0x23
	regCtrl5         = 0x24
	regHPFilterReset = 0x25
	regReference     = 0x26
	regStatus        = 0x27
	regOutXL         = 0x28
	regOutXH         = 0x29
	regOutYL         = 0x2A
	regOutYH         = 0x2B
	regOutZL         = 0x2C
	regOutZH         = 0x2D

	regInt1Cfg      = 0x30
	regInt1Src      = 0x31
	regInt1Ths      = 0x32
	regInt1Duration = 0x33
)

const (
	// power mode field of CTRL_REG1
	pwrModeNormal = 0x20
	// low 3 bits of CTRL_REG1 enable the axes; owned by the caller and
	// preserved across rate changes
	ctrlLowBitsMask = 0x07
	// CTRL_REG2 high-pass filter configuration written on every transition
	hpfConfig = 0x0F
	// constant base of the CTRL_REG4 full-scale byte
	fsrBase = 0x40
	// largest value the INT1_DURATION register can hold
	maxDuration = 0x7F
	// STATUS_REG bits signalling fresh axis data
	statusReadyMask = 0x0F
	// set on the register address to burst-read consecutive registers
	burstReadFlag = 0x80
	// OUT_X_L..OUT_Z_H
	sampleLen = 6
)

func regName(reg byte) string {
	switch reg {
	case regCtrl1:
		return "CTRL_REG1"
	case regCtrl2:
		return "CTRL_REG2"
	case regCtrl3:
		return "CTRL_REG3"
	case regCtrl4:
		return "CTRL_REG4"
	case regCtrl5:
		return "CTRL_REG5"
	case regHPFilterReset:
		return "HP_FILTER_RESET"
	case regReference:
		return "REFERENCE"
	case regStatus:
		return "STATUS_REG"
	case regInt1Cfg:
		return "INT1_CFG"
	case regInt1Src:
		return "INT1_SRC"
	case regInt1Ths:
		return "INT1_THS"
	case regInt1Duration:
		return "INT1_DURATION"
	default:
		return "UNKNOWN"
	}
}
