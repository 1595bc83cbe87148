// +build linux

package joystick

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

type jsDevice struct {
	file        *os.File
	index       int
	name        string
	buttonCount uint8
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &jsDevice{file: f, index: index}
	var name [128]byte
	errno := d.ioctl(iocGBUTTONS, unsafe.Pointer(&d.buttonCount))
	if errno == 0 {
		errno = d.ioctl(iocGNAME, unsafe.Pointer(&name))
	}
	if errno != 0 {
		f.Close()
		return nil, errno
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first available device from startIndex.
// It returns nil without error if there's none.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

func (d *jsDevice) Close() error {
	return d.file.Close()
}

func (d *jsDevice) Index() int {
	return d.index
}

func (d *jsDevice) Name() string {
	return d.name
}

func (d *jsDevice) ButtonCount() int {
	return int(d.buttonCount)
}

// ReadEvent decodes one struct js_event.
func (d *jsDevice) ReadEvent() (Event, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.file, buf[:]); err != nil {
		return nil, err
	}
	ev := event{
		value:  int16(binary.LittleEndian.Uint16(buf[4:])),
		typ:    buf[6],
		number: buf[7],
	}
	if ev.typ&evBTN != 0 {
		return &buttonEvent{ev}, nil
	}
	return &ev, nil
}

type event struct {
	value  int16
	typ    uint8
	number uint8
}

func (e *event) IsInit() bool {
	return e.typ&evINIT != 0
}

func (e *event) Index() int {
	return int(e.number)
}

type buttonEvent struct {
	event
}

func (e *buttonEvent) Pressed() bool {
	return e.value != 0
}

const (
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80806a13

	evINIT uint8 = 0x80
	evBTN  uint8 = 0x01
)

func (d *jsDevice) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return errno
}
