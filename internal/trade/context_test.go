package trade

import (
	"errors"
	"time"

	"farcasterd/internal/address"
	"farcasterd/internal/busproto"
	"farcasterd/internal/offer"
	"farcasterd/internal/progress"
	"farcasterd/internal/registry"
	"farcasterd/internal/supervisor"
)

var errSendFailed = errors.New("send failed")

type fakeSend struct {
	lane    busproto.Lane
	dst     address.ServiceAddress
	payload busproto.Payload
}

// fakeContext is a minimal, entirely in-memory Context double letting
// Machine step functions run without any real worker process or socket.
type fakeContext struct {
	reg  *registry.Registry
	prog *progress.Stream

	sent    []fakeSend
	sendErr error

	launched   []address.ServiceAddress
	launchErr  error

	keyManagerReady bool
	storeReady      bool

	autoFundErr error

	referenced map[address.ServiceAddress]bool

	reconnectTimeout time.Duration
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		reg:              registry.New(),
		prog:             progress.New(),
		keyManagerReady:  true,
		storeReady:       true,
		referenced:       map[address.ServiceAddress]bool{},
		reconnectTimeout: 2 * time.Minute,
	}
}

func (f *fakeContext) Send(lane busproto.Lane, dst address.ServiceAddress, payload busproto.Payload) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, fakeSend{lane, dst, payload})
	return nil
}

func (f *fakeContext) Launch(kind supervisor.Kind, addr address.ServiceAddress, kindArgs []string) error {
	if f.launchErr != nil {
		return f.launchErr
	}
	f.launched = append(f.launched, addr)
	return nil
}

func (f *fakeContext) Registry() *registry.Registry { return f.reg }
func (f *fakeContext) Progress() *progress.Stream    { return f.prog }
func (f *fakeContext) KeyManagerReady() bool         { return f.keyManagerReady }
func (f *fakeContext) StoreReady() bool              { return f.storeReady }

func (f *fakeContext) AutoFund(chain offer.Chain, addr string, amount uint64) error {
	return f.autoFundErr
}

func (f *fakeContext) ReferencesRemain(addr address.ServiceAddress) bool {
	return f.referenced[addr]
}

func (f *fakeContext) PeerReconnectTimeout() time.Duration { return f.reconnectTimeout }
