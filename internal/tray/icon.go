package tray

// iconData is a 16x16 template PNG: a ring around a dot.
var iconData = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00, 0x10,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0xf3, 0xff, 0x61, 0x00, 0x00, 0x00,
	0x3e, 0x49, 0x44, 0x41, 0x54, 0x78, 0xda, 0x63, 0x60, 0xa0, 0x11, 0xf8,
	0x8f, 0x03, 0x53, 0xa4, 0x99, 0x28, 0x43, 0xfe, 0x13, 0x89, 0x29, 0xd2,
	0x8c, 0xd5, 0x10, 0x62, 0x6c, 0xc1, 0xab, 0x06, 0x97, 0x04, 0x2e, 0x3e,
	0x51, 0x06, 0x10, 0x2b, 0x46, 0x3b, 0x03, 0x28, 0xf2, 0x02, 0xc9, 0x81,
	0x48, 0x71, 0x34, 0x52, 0x25, 0x21, 0x51, 0x25, 0x29, 0x53, 0x25, 0x33,
	0x91, 0x04, 0x00, 0x74, 0xaa, 0x87, 0x79, 0x0d, 0xe0, 0x6a, 0x99, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
