package file

import (
	"github.com/fsnotify/fsnotify"

	"github.com/ninja0404/trade-journal/pkg/config/source"
)

type watcher struct {
	f *file

	fw   *fsnotify.Watcher
	exit chan bool
}

func newWatcher(f *file) (source.Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(f.path); err != nil {
		return nil, err
	}

	return &watcher{
		f:    f,
		fw:   fw,
		exit: make(chan bool),
	}, nil
}

func (w *watcher) Next() (*source.ChangeSet, error) {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil, source.ErrWatcherStopped
			}
			// 部分编辑器通过rename+create保存文件，需要重新添加watch
			if event.Op&fsnotify.Rename == fsnotify.Rename {
				w.fw.Add(w.f.path)
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			return w.f.Read()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil, source.ErrWatcherStopped
			}
			return nil, err
		case <-w.exit:
			return nil, source.ErrWatcherStopped
		}
	}
}

func (w *watcher) Stop() error {
	close(w.exit)
	return w.fw.Close()
}
