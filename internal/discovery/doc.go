// Package discovery announces and finds running kioskcfg editors over mDNS.
//
// `kioskcfg serve --advertise` registers a "_kioskcfg._tcp" service so
// colleagues on the same network can open the form without knowing the
// address. The TXT record carries the editor version and the profile GUID
// and name of the configuration being edited; it is republished whenever
// they change.
//
// # Usage Example
//
//	adv, err := discovery.Advertise(discovery.InstanceName(), 8765, version.Version, store.Snapshot())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adv.Shutdown()
//	store.Subscribe(adv.Update)
//
//	editors, err := discovery.Scan(ctx, 3*time.Second)
//	for _, e := range editors {
//	    fmt.Println(e)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Editors must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
