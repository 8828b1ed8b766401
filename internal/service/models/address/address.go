package address

// Descriptor is the transient delivery-address input shape. When Parse is
// true, Value is a location hint (such as an IP address) that still needs
// resolving into coordinates; otherwise Value is the address itself.
type Descriptor struct {
	Parse bool   `json:"parse"`
	Value string `json:"value"`
}
