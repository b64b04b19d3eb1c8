// Package mbox talks to the VideoCore firmware through the /dev/vcio
// property mailbox. The driver uses it to allocate physically contiguous,
// uncached memory for the DMA frame buffers: regular Go memory is neither
// contiguous nor at a stable bus address, so the transfer buffer has to
// come from the GPU side.
package mbox
