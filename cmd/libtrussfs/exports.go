package main

/*
#include "trussfs_ctx.h"
*/
import "C"

//export trussfs_recursive_makedir
func trussfs_recursive_makedir(ctx *C.trussfs_ctx, path *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if path == nil {
		s.abi.NullArgument("recursive_makedir", "path")
		return 0
	}
	return C.uint64_t(s.abi.RecursiveMakeDir(C.GoString(path)))
}

//export trussfs_working_dir
func trussfs_working_dir(ctx *C.trussfs_ctx) *C.char {
	s := lookup(ctx)
	if s == nil {
		return nil
	}
	wd, ok := s.abi.WorkingDir()
	if !ok {
		return nil
	}
	return s.slot("working_dir", wd)
}

//export trussfs_binary_dir
func trussfs_binary_dir(ctx *C.trussfs_ctx) *C.char {
	s := lookup(ctx)
	if s == nil {
		return nil
	}
	dir, ok := s.abi.BinaryDir()
	if !ok {
		return nil
	}
	return s.slot("binary_dir", dir)
}

//export trussfs_readline
func trussfs_readline(ctx *C.trussfs_ctx, prompt *C.char) *C.char {
	s := lookup(ctx)
	if s == nil {
		return nil
	}
	var p string
	if prompt != nil {
		p = C.GoString(prompt)
	}
	line, ok := s.abi.ReadLine(p)
	if !ok {
		return nil
	}
	return s.slot("readline", line)
}

//export trussfs_is_handle_valid
func trussfs_is_handle_valid(ctx *C.trussfs_ctx, handle C.uint64_t) C.bool {
	s := lookup(ctx)
	return C.bool(s != nil && s.abi.IsHandleValid(uint64(handle)))
}

//export trussfs_free
func trussfs_free(ctx *C.trussfs_ctx, handle C.uint64_t) {
	if s := lookup(ctx); s != nil {
		s.abi.Free(uint64(handle))
		s.strings.Forget(uint64(handle))
	}
}

//export trussfs_watcher_create
func trussfs_watcher_create(ctx *C.trussfs_ctx, path *C.char, recursive C.bool) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if path == nil {
		s.abi.NullArgument("watcher_create", "path")
		return 0
	}
	return C.uint64_t(s.abi.WatcherCreate(C.GoString(path), bool(recursive)))
}

//export trussfs_watcher_augment
func trussfs_watcher_augment(ctx *C.trussfs_ctx, watcher C.uint64_t, path *C.char, recursive C.bool) C.bool {
	s := lookup(ctx)
	if s == nil {
		return false
	}
	if path == nil {
		s.abi.NullArgument("watcher_augment", "path")
		return false
	}
	return C.bool(s.abi.WatcherAugment(uint64(watcher), C.GoString(path), bool(recursive)))
}

//export trussfs_watcher_free
func trussfs_watcher_free(ctx *C.trussfs_ctx, watcher C.uint64_t) {
	if s := lookup(ctx); s != nil {
		s.abi.WatcherFree(uint64(watcher))
	}
}

//export trussfs_watcher_poll
func trussfs_watcher_poll(ctx *C.trussfs_ctx, watcher C.uint64_t) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.WatcherPoll(uint64(watcher)))
}

//export trussfs_archive_mount
func trussfs_archive_mount(ctx *C.trussfs_ctx, path *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if path == nil {
		s.abi.NullArgument("archive_mount", "path")
		return 0
	}
	return C.uint64_t(s.abi.ArchiveMount(C.GoString(path)))
}

//export trussfs_archive_free
func trussfs_archive_free(ctx *C.trussfs_ctx, archive C.uint64_t) {
	if s := lookup(ctx); s != nil {
		s.abi.ArchiveFree(uint64(archive))
	}
}

//export trussfs_archive_list
func trussfs_archive_list(ctx *C.trussfs_ctx, archive C.uint64_t) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.ArchiveList(uint64(archive)))
}

//export trussfs_archive_list_detailed
func trussfs_archive_list_detailed(ctx *C.trussfs_ctx, archive C.uint64_t) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.ArchiveListDetailed(uint64(archive)))
}

//export trussfs_archive_glob
func trussfs_archive_glob(ctx *C.trussfs_ctx, archive C.uint64_t, pattern *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if pattern == nil {
		s.abi.NullArgument("archive_glob", "pattern")
		return 0
	}
	return C.uint64_t(s.abi.ArchiveGlob(uint64(archive), C.GoString(pattern)))
}

//export trussfs_archive_filesize_name
func trussfs_archive_filesize_name(ctx *C.trussfs_ctx, archive C.uint64_t, name *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if name == nil {
		s.abi.NullArgument("archive_filesize_name", "name")
		return 0
	}
	return C.uint64_t(s.abi.ArchiveFilesizeName(uint64(archive), C.GoString(name)))
}

//export trussfs_archive_filesize_index
func trussfs_archive_filesize_index(ctx *C.trussfs_ctx, archive, index C.uint64_t) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.ArchiveFilesizeIndex(uint64(archive), uint64(index)))
}

//export trussfs_archive_read_name
func trussfs_archive_read_name(ctx *C.trussfs_ctx, archive C.uint64_t, name *C.char, dest *C.uint8_t, destSize C.uint64_t) C.int64_t {
	s := lookup(ctx)
	if s == nil {
		return -1
	}
	if name == nil {
		s.abi.NullArgument("archive_read_name", "name")
		return -1
	}
	return C.int64_t(s.abi.ArchiveReadName(uint64(archive), C.GoString(name), goBytes(dest, destSize)))
}

//export trussfs_archive_read_index
func trussfs_archive_read_index(ctx *C.trussfs_ctx, archive, index C.uint64_t, dest *C.uint8_t, destSize C.uint64_t) C.int64_t {
	s := lookup(ctx)
	if s == nil {
		return -1
	}
	return C.int64_t(s.abi.ArchiveReadIndex(uint64(archive), uint64(index), goBytes(dest, destSize)))
}

//export trussfs_list_dir
func trussfs_list_dir(ctx *C.trussfs_ctx, path *C.char, filesOnly, includeMetadata C.bool) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if path == nil {
		s.abi.NullArgument("list_dir", "path")
		return 0
	}
	return C.uint64_t(s.abi.ListDir(C.GoString(path), bool(filesOnly), bool(includeMetadata)))
}

//export trussfs_split_path
func trussfs_split_path(ctx *C.trussfs_ctx, path *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if path == nil {
		s.abi.NullArgument("split_path", "path")
		return 0
	}
	return C.uint64_t(s.abi.SplitPath(C.GoString(path)))
}

//export trussfs_list_new
func trussfs_list_new(ctx *C.trussfs_ctx) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.ListNew())
}

//export trussfs_list_free
func trussfs_list_free(ctx *C.trussfs_ctx, list C.uint64_t) {
	if s := lookup(ctx); s != nil {
		s.abi.ListFree(uint64(list))
		s.strings.Forget(uint64(list))
	}
}

//export trussfs_list_length
func trussfs_list_length(ctx *C.trussfs_ctx, list C.uint64_t) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	return C.uint64_t(s.abi.ListLength(uint64(list)))
}

//export trussfs_list_get
func trussfs_list_get(ctx *C.trussfs_ctx, list, index C.uint64_t) *C.char {
	s := lookup(ctx)
	if s == nil {
		return nil
	}
	item, ok := s.abi.ListGet(uint64(list), uint64(index))
	if !ok {
		return nil
	}
	return s.strings.Item(uint64(list), uint64(index), item)
}

//export trussfs_list_push
func trussfs_list_push(ctx *C.trussfs_ctx, list C.uint64_t, item *C.char) C.uint64_t {
	s := lookup(ctx)
	if s == nil {
		return 0
	}
	if item == nil {
		s.abi.NullArgument("list_push", "item")
		return 0
	}
	return C.uint64_t(s.abi.ListPush(uint64(list), C.GoString(item)))
}
