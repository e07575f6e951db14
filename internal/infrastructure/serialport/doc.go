// Package serialport is the device link: a plain byte channel to the
// projector's RS-232 port built on go.bug.st/serial.
//
// The link owns framing time only. Callers write a frame, then Collect
// for a fixed window; there is no notion of replies or protocols here.
//
//	port, err := serialport.Open(serialport.Config{Device: "/dev/ttyUSB0", Baud: 19200})
//	if err != nil {
//	    return err
//	}
//	defer port.Close()
//
//	_ = port.Discard()
//	_ = port.Write(query)
//	reply, _ := port.Collect(100*time.Millisecond, 22)
package serialport
