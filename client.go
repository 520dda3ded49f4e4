package indiclient

// Client is the in-memory store of every device known to a connection,
// keyed by device name (spec §4.C). It owns no network state; conn.go
// feeds it decoded Commands and forwards the results to callers.
type Client struct {
	devices map[string]*Device
}

// NewClient returns an empty client store.
func NewClient() *Client {
	return &Client{devices: map[string]*Device{}}
}

// Devices returns the name-to-device map. Callers must not mutate it.
func (c *Client) Devices() map[string]*Device {
	return c.devices
}

// Device returns the named device and whether it has been seen yet.
func (c *Client) Device(name string) (*Device, bool) {
	d, ok := c.devices[name]
	return d, ok
}

// Update routes cmd to its device, creating the device on first mention,
// and applies it (spec §4.C.1). Commands that carry no device name (a
// getProperties with neither device nor name set, for instance) are
// applied to no device and return (nil, nil).
func (c *Client) Update(cmd Command) (Parameter, error) {
	name, ok := cmd.DeviceName()
	if !ok || name == "" {
		return nil, nil
	}

	dev, exists := c.devices[name]
	if !exists {
		dev = NewDevice()
		c.devices[name] = dev
	}
	return dev.Update(cmd)
}

// Clear removes every known device, returning the client to its initial
// empty state.
func (c *Client) Clear() {
	c.devices = map[string]*Device{}
}
