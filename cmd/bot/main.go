package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "operator name")
		auto = flag.Int("auto", 0, "play N autonomous rounds instead of reading stdin")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	c, err := dial(*url)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer c.Close()

	w, err := c.hello(*name)
	if err != nil {
		logger.Fatalf("handshake: %v", err)
	}
	logger.Printf("WELCOME session=%s seed=%d tick=%d failed=%v", w.SessionID, w.Seed, w.Tick, w.Failed)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	lines := make(chan string)
	if *auto > 0 {
		go func() {
			defer close(lines)
			for _, line := range autoplay(*auto) {
				lines <- line
			}
		}()
	} else {
		go func() {
			defer close(lines)
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					lines <- line
				}
			}
		}()
	}

	for {
		select {
		case <-stop:
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			res, err := c.exec(line)
			if err != nil {
				logger.Fatalf("%s: %v", line, err)
			}
			fmt.Printf("> %s  [seq=%d tick=%d]\n", line, res.Seq, res.Tick)
			for _, l := range res.Lines {
				fmt.Println(l)
			}
		}
	}
}

// autoplay is a fixed defensive routine: raise defense, keep ammo queued,
// advance time and check status. A failed session is rebooted.
func autoplay(rounds int) []string {
	out := []string{"SET DEFENSE 3", "SET REPAIR 2", "CONFIG DOCTRINE BALANCED"}
	for i := 0; i < rounds; i++ {
		if i%4 == 0 {
			out = append(out, "FAB ADD TURRET AMMO")
		}
		out = append(out, "WAIT 10", "STATUS")
	}
	return out
}
