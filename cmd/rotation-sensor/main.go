// Command rotation-sensor decodes a quadrature rotary encoder on two GPIO
// lines and exposes the shaft angle over HTTP and MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rotation-sensor/internal/counter"
	"github.com/sweeney/rotation-sensor/internal/device"
	"github.com/sweeney/rotation-sensor/internal/gpio"
	"github.com/sweeney/rotation-sensor/internal/mqtt"
	"github.com/sweeney/rotation-sensor/internal/status"
	"github.com/sweeney/rotation-sensor/internal/web"
)

func main() {
	pinA := flag.Int("pin-a", gpio.DefaultPinA, "BCM pin number for channel A")
	pinB := flag.Int("pin-b", gpio.DefaultPinB, "BCM pin number for channel B")
	modulus := flag.Int64("modulus", 5000, "Encoder ticks per revolution")
	poll := flag.Duration("poll", 100*time.Millisecond, "Status/publish refresh interval")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	printState := flag.Bool("print-state", false, "Print current line levels and exit")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	ws := resolveWSBroker(*wsBroker, *broker)
	if err := run(*pinA, *pinB, *modulus, *poll, *broker, *heartbeat, *printState, *httpAddr, ws); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(pinA, pinB int, modulus int64, poll time.Duration, broker string, heartbeat time.Duration, printState bool, httpAddr, wsBroker string) error {
	if modulus <= 0 {
		return fmt.Errorf("modulus must be positive, got %d", modulus)
	}

	// Shared counter first: the edge handler is installed during line
	// acquisition and may fire immediately.
	c := counter.New(modulus)

	watcher, err := gpio.NewRealWatcher(pinA, pinB, func(bHigh bool) {
		c.Step(bHigh)
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	// Print state mode
	if printState {
		a, b, err := watcher.Levels()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("A: %d, B: %d\n", a, b)
		return nil
	}

	node := device.NewNode(c)

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PinA:        pinA,
		PinB:        pinB,
		Modulus:     modulus,
		PollMs:      poll.Milliseconds(),
		HeartbeatMs: heartbeat.Milliseconds(),
		Broker:      broker,
		HTTPPort:    httpAddr,
		WSBroker:    wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP server with the angle endpoint registered
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker, node)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http server listening on %s", httpAddr)
	}

	log.Printf("started: pins A=%d B=%d modulus=%d broker=%s heartbeat=%v", pinA, pinB, modulus, broker, heartbeat)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(c, node, publisher, publisher, tracker, heartbeat, time.Now, ticker.C, sigCh)
}

func runLoop(c *counter.Counter, node *device.Node, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastPublished := c.Value()
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				updateTracker(c, node, tracker)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			ticks := c.Value()

			// Position changed since the last published event. Edges
			// arrive asynchronously; the tick only paces publication.
			if ticks != lastPublished {
				angle := c.Angle()
				log.Printf("position: ticks=%d angle=%s", ticks, angleString(angle))
				if err := publisher.Publish(mqtt.RotationEvent{
					Timestamp:   t,
					Ticks:       ticks,
					AngleTenths: angle,
				}); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				lastPublished = ticks
			}

			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					if mqttStatus != nil {
						tracker.SetMQTTConnected(mqttStatus.IsConnected())
					}
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(c, node, tracker)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
					log.Printf("heartbeat: uptime=%v ticks=%d cw=%d ccw=%d writes=%d",
						snap.Uptime(), snap.Ticks, snap.Edges.CW, snap.Edges.CCW, snap.Writes)
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				updateTracker(c, node, tracker)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}
		}
	}
}

func updateTracker(c *counter.Counter, node *device.Node, tracker *status.Tracker) {
	ticks := c.Value()
	angle := c.Angle()
	tracker.Update(ticks, angle, angleString(angle), c.Edges(), node.Writes())
}

// angleString renders tenths of a degree the same way the device node does,
// without the trailing newline.
func angleString(tenths int64) string {
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
