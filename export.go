package orbital

import (
	"fmt"
	"os"
	"time"
)

// ExportConfig configures CSV exports of propagated states.
type ExportConfig struct {
	Filename string
	// Timestamp appends the generation time to the file name.
	Timestamp bool
	// Elements adds the keplerian element columns to the cartesian ones.
	Elements bool
}

func (c ExportConfig) path(env *Environment) string {
	name := c.Filename
	if c.Timestamp {
		name += "-" + time.Now().Format("2006-01-02-15.04.05")
	}
	dir := env.OutputDir
	if dir == "" {
		dir = "."
	}
	return fmt.Sprintf("%s/prop-%s.csv", dir, name)
}

// StreamStates consumes a channel of states and writes them as CSV rows in
// the configured output directory, blocking until the channel closes. Run it
// in its own goroutine and feed it while propagating:
//
//	stateChan := make(chan *StateVector)
//	go StreamStates(env, conf, stateChan)
func StreamStates(env *Environment, conf ExportConfig, stateChan <-chan *StateVector) {
	f, err := os.Create(conf.path(env))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	hdr := "date,x,y,z,vx,vy,vz"
	if conf.Elements {
		hdr += ",a,e,i,Ω,ω,ν"
	}
	f.WriteString(hdr + "\n")

	for sv := range stateChan {
		cart, err := sv.Cartesian()
		if err != nil {
			env.Logger.Log("level", "error", "subsys", "export", "err", err.Error())
			continue
		}
		row := sv.Date().UTC().Format(time.RFC3339Nano)
		for _, v := range cart {
			row += fmt.Sprintf(",%f", v)
		}
		if conf.Elements {
			kepl, err := ConvertForm(cart, sv.Frame().Center.GM(), Cartesian, Keplerian)
			if err != nil {
				env.Logger.Log("level", "error", "subsys", "export", "err", err.Error())
				continue
			}
			for _, v := range kepl {
				row += fmt.Sprintf(",%f", v)
			}
		}
		f.WriteString(row + "\n")
	}
}

// ExportStream drains a propagation stream into a CSV file.
func ExportStream(env *Environment, conf ExportConfig, stream *Stream) error {
	stateChan := make(chan *StateVector)
	done := make(chan struct{})
	go func() {
		StreamStates(env, conf, stateChan)
		close(done)
	}()
	for {
		sv, err := stream.Next()
		if err != nil {
			close(stateChan)
			<-done
			return err
		}
		if sv == nil {
			break
		}
		stateChan <- sv
	}
	close(stateChan)
	<-done
	return nil
}
