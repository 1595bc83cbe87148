package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/tictac.go/pkg/link/mqtt"
	"github.com/robotalks/tictac.go/pkg/peer"
	"github.com/robotalks/tictac.go/pkg/status"
)

var (
	mqttURL = "mqtt://localhost:1883/tictac/"
)

func init() {
	if val := os.Getenv("TICTAC_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	b, err := mqtt.NewBrokerFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := b.Connect(); err != nil {
		log.Fatalln(err)
	}

	b.Sub("+"+mqtt.FramesSuffix, mqtt.Handler(func(topic string, payload []byte) {
		msg, err := peer.Decode(payload)
		if err != nil {
			log.Printf("%s: bad frame %q: %v", topic, payload, err)
			return
		}
		log.Printf("%s: %s", strings.TrimSuffix(topic, mqtt.FramesSuffix), msg)
	}))
	b.Sub("+"+mqtt.StatusSuffix, mqtt.Handler(func(topic string, payload []byte) {
		s, err := status.Decode(payload)
		if err != nil {
			log.Printf("%s: bad status: %v", topic, err)
			return
		}
		log.Printf("%s: [status] %s", strings.TrimSuffix(topic, mqtt.StatusSuffix), s.String())
	}))
	<-(chan struct{})(nil)
}
