// Command stridesim runs a self-contained prediction demo: an authority
// served over a websocket, a predicted client connected to it, and a
// scripted parkour run across a small course. It reports wire and
// correction metrics at the end, which makes it a convenient smoke test for
// determinism changes.
package main

import (
	"flag"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/skybreak-gg/stride/arena"
	"github.com/skybreak-gg/stride/game"
	"github.com/skybreak-gg/stride/movement"
	"github.com/skybreak-gg/stride/prediction"
	"github.com/skybreak-gg/stride/timer"
	"github.com/skybreak-gg/stride/worker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func main() {
	configPath := flag.String("config", "", "movement tuning TOML, defaults when empty")
	debug := flag.Bool("debug", false, "serve runtime graphs on localhost:18066")
	seconds := flag.Float64("seconds", 20, "simulated seconds to run")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	log.SetLevel(logrus.DebugLevel)

	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
			log.WithError(err).Warn("sentry unavailable")
		}
	}

	pool := worker.NewPool(0)

	if *debug {
		viewer.SetConfiguration(viewer.WithAddr("localhost:18066"))
		mgr := statsview.New()
		pool.Submit(func() {
			_ = mgr.Start()
		})
		log.Info("runtime graphs on http://localhost:18066/debug/statsview")
	}

	cfg := movement.DefaultConfig()
	if *configPath != "" {
		loaded, err := movement.LoadConfig(*configPath)
		if err != nil {
			log.WithError(err).Fatal("loading config")
		}
		cfg = loaded
	}

	world := buildCourse()

	addr, ready := serveAuthority(log, cfg, world, pool)
	log.WithField("addr", addr).Info("authority listening")

	client := dialClient(log, cfg, world, addr, pool)
	auth := <-ready
	runScript(log, client, *seconds)

	log.WithField("metrics", client.Metrics.String()).Info("client")
	log.WithField("metrics", auth.Metrics.String()).Info("authority")
	log.WithFields(logrus.Fields{
		"client":    prediction.StateChecksum(client.Component()),
		"authority": prediction.StateChecksum(auth.Component()),
	}).Info("final state checksums")
}

// buildCourse lays out the demo level: open ground, a wall-run corridor
// wall, a mantling ledge and a climbable tower.
func buildCourse() *arena.World {
	w := arena.NewWorld()
	w.AddBox(arena.Box{Min: mgl32.Vec3{-3000, -170, 0}, Max: mgl32.Vec3{3000, -150, 1200}})
	w.AddBox(arena.Box{Min: mgl32.Vec3{1200, -500, 0}, Max: mgl32.Vec3{1600, 500, 120}})
	w.AddBox(arena.Box{Min: mgl32.Vec3{2400, -500, 0}, Max: mgl32.Vec3{2600, 500, 600}, Climbable: true})
	return w
}

// serveAuthority starts a websocket listener hosting a single authoritative
// component. The returned channel yields the authority once a client
// connects.
func serveAuthority(log *logrus.Logger, cfg *movement.Config, world *arena.World, pool *worker.Pool) (string, chan *prediction.Authority) {
	sched := timer.New()
	comp := movement.NewComponent(cfg, world, movement.NopClips{}, sched, nil,
		logrus.NewEntry(log).WithField("side", "authority"), true)

	var proxy prediction.ProxyFlags
	proxy.WatchComponent(comp)

	ready := make(chan *prediction.Authority, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/move", func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			log.WithError(err).Error("upgrading connection")
			return
		}
		auth := prediction.NewAuthority(comp, sched, func(frame []byte) {
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.WithError(err).Warn("writing to client")
			}
		}, logrus.NewEntry(log).WithField("side", "authority"))
		ready <- auth

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := auth.Receive(frame); err != nil {
				log.WithError(err).Warn("bad frame from client")
			}
		}
	})

	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		log.WithError(err).Fatal("listening")
	}
	pool.Submit(func() {
		_ = http.Serve(ln, mux)
	})

	return ln.Addr().String(), ready
}

// wsClient owns the client half of the demo: a predicted component whose
// frames ride the websocket, with received frames queued to tick boundaries.
type wsClient struct {
	*prediction.Client
	conn     *websocket.Conn
	incoming chan []byte
}

func dialClient(log *logrus.Logger, cfg *movement.Config, world *arena.World, addr string, pool *worker.Pool) *wsClient {
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/move", nil)
	if err != nil {
		log.WithError(err).Fatal("dialing authority")
	}

	sched := timer.New()
	comp := movement.NewComponent(cfg, world, movement.NopClips{}, sched, nil,
		logrus.NewEntry(log).WithField("side", "client"), false)

	wc := &wsClient{conn: conn, incoming: make(chan []byte, 256)}
	wc.Client = prediction.NewClient(comp, sched, func(frame []byte) {
		if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			log.WithError(err).Warn("writing to authority")
		}
	}, logrus.NewEntry(log).WithField("side", "client"))

	pool.Submit(func() {
		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				close(wc.incoming)
				return
			}
			wc.incoming <- frame
		}
	})
	return wc
}

// step drains received frames, then advances one fixed tick.
func (wc *wsClient) step(accel mgl32.Vec3) {
	for {
		select {
		case frame, ok := <-wc.incoming:
			if !ok {
				return
			}
			_ = wc.Receive(frame)
		default:
			wc.Tick(accel)
			return
		}
	}
}

// runScript drives the client through the course in real time: sprint, jump,
// dash, slide, a wall run along the corridor, a mantle onto the ledge and a
// climb up the tower.
func runScript(log *logrus.Logger, client *wsClient, seconds float64) {
	c := client.Component()
	ticker := time.NewTicker(time.Second / time.Duration(game.TicksPerSecond))
	defer ticker.Stop()

	total := int(seconds * float64(game.TicksPerSecond))
	forward := mgl32.Vec3{2048, 0, 0}

	for tick := 0; tick < total; tick++ {
		<-ticker.C

		switch tick {
		case 0:
			c.StartSprint()
		case 120:
			c.StartDash()
		case 240:
			c.StartSlide()
		case 330:
			c.StopSlide()
		case 420:
			c.Jump()
		case 600:
			c.StartCrouch()
		case 700:
			c.StopCrouch()
		case 780:
			c.Jump()
		case 900:
			c.StartClimb()
		}

		accel := forward
		if tick >= 240 && tick < 330 {
			accel = mgl32.Vec3{}
		}
		client.step(accel)

		if tick%game.TicksPerSecond == 0 {
			log.WithFields(logrus.Fields{
				"t":    c.Now(),
				"mode": c.Mode().String(),
				"pos":  c.Position,
			}).Debug("tick")
		}
	}
	client.Flush()

	// give the last frames a moment to make the round trip
	time.Sleep(100 * time.Millisecond)
	for {
		select {
		case frame := <-client.incoming:
			_ = client.Receive(frame)
			continue
		default:
		}
		break
	}
}
