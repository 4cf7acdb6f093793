package hostos

// USB control request constants, per the USB 2.0 and HID 1.11
// specifications. Only what the heuristic needs to recognize.
const (
	requestTypeIn        = 0x80
	requestTypeTypeMask  = 0x60
	requestTypeStandard  = 0x00
	requestTypeClass     = 0x20
	requestTypeRecipMask = 0x1F
	requestTypeDevice    = 0x00
	requestTypeInterface = 0x01

	requestGetDescriptor = 0x06

	descriptorTypeString          = 0x03
	descriptorTypeDeviceQualifier = 0x06

	// msOSStringIndex is the string descriptor index Windows uses to
	// probe for Microsoft OS descriptors.
	msOSStringIndex = 0xEE

	// HID class requests (HID 1.11 §7.2).
	hidGetReport   = 0x01
	hidGetIdle     = 0x02
	hidSetIdle     = 0x0A
	hidSetProtocol = 0x0B
)

// ControlRequest is a decoded USB SETUP packet as observed on the
// gadget's control endpoint.
type ControlRequest struct {
	RequestType uint8  // bmRequestType
	Request     uint8  // bRequest
	Value       uint16 // wValue
	Index       uint16 // wIndex
	Length      uint16 // wLength
}

// isMSOSStringRequest reports whether this is a GET_DESCRIPTOR for the
// Microsoft OS string descriptor (string index 0xEE).
func (r ControlRequest) isMSOSStringRequest() bool {
	return r.RequestType == requestTypeIn|requestTypeStandard|requestTypeDevice &&
		r.Request == requestGetDescriptor &&
		r.Value == descriptorTypeString<<8|msOSStringIndex
}

// isDeviceQualifierRequest reports whether this is a GET_DESCRIPTOR for
// the device qualifier descriptor.
func (r ControlRequest) isDeviceQualifierRequest() bool {
	return r.RequestType == requestTypeIn|requestTypeStandard|requestTypeDevice &&
		r.Request == requestGetDescriptor &&
		r.Value>>8 == descriptorTypeDeviceQualifier
}

// isHIDClassRequest reports whether this is one of the HID class
// control requests directed at an interface.
func (r ControlRequest) isHIDClassRequest() bool {
	if r.RequestType&requestTypeTypeMask != requestTypeClass ||
		r.RequestType&requestTypeRecipMask != requestTypeInterface {
		return false
	}
	switch r.Request {
	case hidGetReport, hidGetIdle, hidSetIdle, hidSetProtocol:
		return true
	default:
		return false
	}
}
