// ABOUTME: Musical note frequency package
// ABOUTME: Reference frequency table and equal-temperament calculator
// Package notes maps musical notes to frequencies in Hz.
//
// Two independent sources are provided:
//   - Lookup: reads the static reference table (17 spellings, octaves 0-8)
//   - Calculate: derives the frequency from equal temperament with A4 = 440 Hz
//
// Both report a missing note with a false second return value rather than an
// error. Note names are case-sensitive and use ASCII accidentals ("C#", "Bb").
//
// The two sources agree within Tolerance for every table entry; Verify
// performs the cross-check.
//
// Example:
//
//	if hz, ok := notes.Lookup("C#", 4); ok {
//	    fmt.Printf("C#4 = %.2f Hz\n", hz)
//	}
//
//	hz, ok := notes.Calculate("Bb", 2)
package notes
