package device

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"
)

// IOEvent matches the record layout a kprobe on usb_submit_urb would emit:
// direction (0=out, 1=in), endpoint address, and transferred byte count.
type IOEvent struct {
	Direction uint8
	Endpoint  uint8
	_         uint16 // padding
	Bytes     uint32
}

// bpfObjects holds the loaded program and map; loading the compiled object
// itself is out of scope here (no clang/bpf2go toolchain in this
// environment) but the attach/read lifecycle below is the real one a
// compiled object would plug into.
type bpfObjects struct {
	UsbSubmitUrb *ebpf.Program `ebpf:"trace_usb_submit_urb"`
	IOEvents     *ebpf.Map     `ebpf:"io_events"`
}

func (o *bpfObjects) Close() error {
	if o.UsbSubmitUrb != nil {
		o.UsbSubmitUrb.Close()
	}
	if o.IOEvents != nil {
		o.IOEvents.Close()
	}
	return nil
}

// loadBPFObjects loads the kprobe program and ring buffer map from a
// compiled object file produced out of band (bpf2go or clang -target bpf).
func loadBPFObjects(objs *bpfObjects, opts *ebpf.CollectionOptions) error {
	spec, err := ebpf.LoadCollectionSpec("usbtrace.bpf.o")
	if err != nil {
		return fmt.Errorf("load collection spec: %w", err)
	}
	coll, err := ebpf.NewCollectionWithOptions(spec, ebpf.CollectionOptions{})
	if err != nil {
		return fmt.Errorf("new collection: %w", err)
	}
	defer coll.Close()

	// Detach both objects so closing the collection leaves them open for
	// the caller.
	objs.UsbSubmitUrb = coll.DetachProgram("trace_usb_submit_urb")
	objs.IOEvents = coll.DetachMap("io_events")
	return nil
}

// Tracer attaches a kprobe on usb_submit_urb and streams transfer events
// from a BPF ring buffer. Used by cmd/monitor's --trace flag for low-level
// USB diagnostics when hidraw-level debugging isn't enough.
type Tracer struct {
	objs   bpfObjects
	kprobe link.Link
	reader *ringbuf.Reader
}

// NewTracer loads the BPF program, attaches it, and opens the ring buffer
// for reading.
func NewTracer() (*Tracer, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("remove memlock rlimit: %w", err)
	}

	var objs bpfObjects
	if err := loadBPFObjects(&objs, nil); err != nil {
		return nil, fmt.Errorf("load bpf objects: %w", err)
	}

	kp, err := link.Kprobe("usb_submit_urb", objs.UsbSubmitUrb, nil)
	if err != nil {
		objs.Close()
		return nil, fmt.Errorf("attach kprobe: %w", err)
	}

	reader, err := ringbuf.NewReader(objs.IOEvents)
	if err != nil {
		kp.Close()
		objs.Close()
		return nil, fmt.Errorf("open ring buffer: %w", err)
	}

	log.Printf("usb tracer attached to usb_submit_urb")
	return &Tracer{objs: objs, kprobe: kp, reader: reader}, nil
}

// ReadEvent blocks for the next transfer event.
func (t *Tracer) ReadEvent() (IOEvent, error) {
	record, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, ringbuf.ErrClosed) {
			return IOEvent{}, fmt.Errorf("ring buffer closed: %w", err)
		}
		return IOEvent{}, fmt.Errorf("read ring buffer: %w", err)
	}

	var ev IOEvent
	if err := binary.Read(bytes.NewReader(record.RawSample), binary.LittleEndian, &ev); err != nil {
		return IOEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

// Close tears down the kprobe, ring buffer reader, and loaded program.
func (t *Tracer) Close() error {
	if t.reader != nil {
		t.reader.Close()
	}
	if t.kprobe != nil {
		t.kprobe.Close()
	}
	return t.objs.Close()
}
