package main

// defaultPattern plays kick on track 0, a bass line on track 1 and plucked
// chords on track 2 over a four-beat loop.
const defaultPattern = `
set_loop_length(4)

for beat = 0, 3 do
  add_event(beat, note("C2"), 120, 0.25, 0, 0.3, 0.4)
end

local bass = { "C2", "C2", "Eb2", "G1", "C2", "Bb1", "G1", "F1" }
for i, name in ipairs(bass) do
  local beat = (i - 1) * 0.5
  add_event(beat + 0.25, note(name), 100, 0.2, 1, 0.35 + 0.05 * (i % 3), 0.5)
end

for _, beat in ipairs({ 0.5, 1.75, 3 }) do
  for _, name in ipairs({ "G4", "C5", "Eb5" }) do
    add_event(beat, note(name), 85, 0.5, 2, 0.6, 0.3)
  end
end

set_effect("delay_send", 0.35)
set_effect("reverb_send", 0.2)
`
