package binder

import (
	"context"
	"time"

	"github.com/go-binder/binder/internal/constants"
	"github.com/go-binder/binder/internal/drivererr"
	"github.com/go-binder/binder/internal/sysabi"
)

const serviceManagerDescriptor = "android.os.IServiceManager"

// Service Manager transaction codes, relative to the first service-specific
// code (sysabi.FirstCallTransaction), matching the well-known ordering
// every IServiceManager implementation answers to.
const (
	getServiceCode   = sysabi.FirstCallTransaction + 0
	checkServiceCode = sysabi.FirstCallTransaction + 1
	addServiceCode   = sysabi.FirstCallTransaction + 2
	listServicesCode = sysabi.FirstCallTransaction + 3
)

// ServiceManager is a thin client stub for the context object every
// Binder domain conventionally serves at handle 0.
type ServiceManager struct {
	proxy *Proxy
}

// CheckService looks up name without retrying, returning (nil, nil) if no
// service is currently registered under that name.
func (sm *ServiceManager) CheckService(name string) (*Proxy, error) {
	req := NewOwnedParcel(sm.proxy.conn)
	defer req.Release()
	req.WriteInterfaceToken(serviceManagerDescriptor)
	req.WriteString16(name)

	reply, err := sm.proxy.Transact(checkServiceCode, req, FlagNone)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	defer reply.Release()
	return reply.ReadStrongBinder()
}

// GetService is CheckService with the blocking retry loop Android clients
// traditionally use while waiting for a service to register at boot:
// it polls every constants.GetServiceRetryInterval until the service
// appears or ctx is done.
func (sm *ServiceManager) GetService(ctx context.Context, name string) (*Proxy, error) {
	for {
		proxy, err := sm.CheckService(name)
		if err != nil {
			return nil, err
		}
		if proxy != nil {
			return proxy, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(constants.GetServiceRetryInterval):
		}
	}
}

// AddService registers service under name. allowIsolated mirrors the
// Android flag of the same name, letting isolated-process clients resolve
// this service.
func (sm *ServiceManager) AddService(name string, service *Proxy, allowIsolated bool) error {
	req := NewOwnedParcel(sm.proxy.conn)
	defer req.Release()
	req.WriteInterfaceToken(serviceManagerDescriptor)
	req.WriteString16(name)
	req.WriteStrongBinder(service)
	req.WriteInt32(boolToInt32(allowIsolated))

	reply, err := sm.proxy.Transact(addServiceCode, req, FlagNone)
	if err != nil {
		return err
	}
	if reply == nil {
		return nil
	}
	defer reply.Release()

	status, err := reply.ReadInt32()
	if err != nil {
		return err
	}
	if status != 0 {
		return drivererr.FromStatusCode(status)
	}
	return nil
}

// ListServices enumerates every registered service name, index by index,
// stopping at the first slot whose Transact call fails (conventionally
// with BadIndex, once enumeration is exhausted) or whose reply cannot be
// read as a string16. The names collected before that point are returned
// with a nil error.
func (sm *ServiceManager) ListServices() ([]string, error) {
	var names []string
	for index := int32(0); ; index++ {
		req := NewOwnedParcel(sm.proxy.conn)
		req.WriteInterfaceToken(serviceManagerDescriptor)
		req.WriteInt32(index)

		reply, err := sm.proxy.Transact(listServicesCode, req, FlagNone)
		req.Release()
		if err != nil {
			// Any driver error (conventionally BadIndex once index runs past
			// the last registered service) ends enumeration; the names
			// collected so far are returned rather than discarded.
			return names, nil
		}
		if reply == nil {
			return names, nil
		}
		name, err := reply.ReadString16()
		reply.Release()
		if err != nil {
			return names, nil
		}
		names = append(names, name)
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
