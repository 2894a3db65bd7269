// aacpctl is a debugging tool for the AACP session manager.
//
// It establishes a direct L2CAP connection to an AirPods device on PSM
// 0x1001, performs the handshake and feature negotiation, then prints
// every parsed event as it arrives. With -discover it first asks BlueZ
// for a connected AirPods-like device instead of taking a MAC address.
// With -upstream it also mirrors battery readings into BlueZ's battery
// provider interface for desktop battery indicators to pick up.
//
// Usage:
//
//	aacpctl -mac=AA:BB:CC:DD:EE:FF
//	aacpctl -discover -upstream
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/go-aacp/aacp-session/internal/aacp"
	"github.com/go-aacp/aacp-session/internal/devicerecord"
	"github.com/go-aacp/aacp-session/internal/discovery"
	"github.com/go-aacp/aacp-session/internal/upstream"
)

func main() {
	mac := flag.String("mac", "", "peer MAC address, e.g. AA:BB:CC:DD:EE:FF")
	discover := flag.Bool("discover", false, "find a connected AirPods device via BlueZ instead of -mac")
	publishUpstream := flag.Bool("upstream", false, "mirror battery readings into BlueZ's battery provider")
	verbose := flag.Bool("v", false, "debug-level logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(log)

	peer, err := resolvePeer(*mac, *discover, entry)
	if err != nil {
		entry.WithError(err).Fatal("could not resolve a peer to connect to")
	}

	records := devicerecord.New(devicerecord.WithLogger(entry))

	var sink aacp.EventSink = aacp.EventSinkFunc(func(e aacp.Event) {
		entry.WithField("event", fmt.Sprintf("%T", e)).Infof("%+v", e)
	})

	if *publishUpstream {
		provider, err := upstream.NewBlueZBatteryProvider()
		if err != nil {
			entry.WithError(err).Warn("upstream battery provider unavailable, continuing without it")
		} else {
			defer provider.Close()
			inner := sink
			sink = aacp.EventSinkFunc(func(e aacp.Event) {
				inner.HandleAACPEvent(e)
				provider.HandleAACPEvent(e)
			})
		}
	}

	session := aacp.NewSession(
		aacp.WithEventSink(sink),
		aacp.WithDeviceRecordStore(records),
		aacp.WithLogger(entry),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := session.Connect(ctx, peer); err != nil {
		entry.WithError(err).Fatal("connect failed")
	}
	defer session.Close()

	if err := session.SendHandshake(); err != nil {
		entry.WithError(err).Fatal("handshake failed")
	}
	if err := session.SendSetFeatureFlags(); err != nil {
		entry.WithError(err).Fatal("set-feature-flags failed")
	}
	if err := session.SendRequestNotifications(); err != nil {
		entry.WithError(err).Fatal("request-notifications failed")
	}

	entry.WithField("peer", peer.String()).Info("session ready, press ctrl-c to stop")
	<-ctx.Done()
}

func resolvePeer(mac string, discover bool, log *logrus.Entry) (aacp.PeerAddress, error) {
	if discover {
		provider, err := discovery.NewBlueZProvider()
		if err != nil {
			return aacp.PeerAddress{}, err
		}
		defer provider.Close()

		peers, err := provider.ConnectedPeers()
		if err != nil {
			return aacp.PeerAddress{}, err
		}
		if len(peers) == 0 {
			return aacp.PeerAddress{}, fmt.Errorf("aacpctl: no connected AirPods found via BlueZ")
		}
		log.WithField("alias", peers[0].Alias).Info("discovered peer")
		return peers[0].Address, nil
	}

	if mac == "" {
		return aacp.PeerAddress{}, fmt.Errorf("aacpctl: either -mac or -discover is required")
	}
	return aacp.ParsePeerAddress(mac)
}
